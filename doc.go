// Package eventpay verifies payments for an event-registration site.
//
// # Overview
//
// Two endpoints close the loop after a customer pays through a hosted
// checkout:
//
//	POST /api/razorpay/verify-payment   Razorpay client-side checkout
//	GET  /api/verify?payment_id=<id>    gateway order status (PhonePe or Stripe)
//
// The first recomputes the Razorpay HMAC-SHA256 signature over
// "<order_id>|<payment_id>" and stores the payment. The second asks the
// configured gateway for the order's authoritative state, registers the
// order once, sends one confirmation email and redirects the browser to
// /verify or /failed.
//
// # Architecture
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────┐
//	│   Browser    │───►│   eventpay   │───►│   Gateway    │
//	│  (checkout)  │◄───│  (checkout)  │    │ PhonePe/...  │
//	└──────────────┘    └──────┬───────┘    └──────────────┘
//	                           │
//	              ┌────────────┼────────────┐
//	              ▼            ▼            ▼
//	          storage        SMTP       OpenSearch
//	     (mongo/sqlite/pg)             (audit, logs)
//
// # Idempotency
//
// Registrations are keyed by the merchant order id. Storage backends
// insert them with a uniqueness constraint and report ErrDuplicate when
// the key exists, so concurrent or repeated reconciliations create one
// registration and send one email.
//
// # Packages
//
//   - checkout: verification and reconciliation service
//   - handler, router: HTTP layer on chi
//   - provider: gateway interface, registry, phonepe, stripe and razorpay
//   - infra/store: MongoDB, SQLite, PostgreSQL and in-memory storage
//   - infra/mail: SMTP delivery and confirmation templates
//   - infra/config, infra/logger, infra/opensearch, infra/metrics,
//     infra/middle, infra/response, infra/validate: ambient services
//
// # Configuration
//
// Settings come from the environment (optionally a .env file). See
// infra/config for the full list; the essentials are:
//
//	APP_PORT=9999
//	APP_URL=https://events.example.com
//	RAZORPAY_KEY_SECRET=...
//	GATEWAY=phonepe
//	PHONEPE_CLIENT_ID=...
//	PHONEPE_CLIENT_SECRET=...
//	STORAGE_DRIVER=mongo
//	MONGO_URI=mongodb://localhost:27017
//	SMTP_HOST=smtp.example.com
package eventpay
