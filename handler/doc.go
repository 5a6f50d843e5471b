// Package handler provides the HTTP handlers of the event payment service.
//
// Handlers decode the request, call the checkout service with a bounded
// context and map its sentinel errors to status codes. Internal failures
// are logged with the request id and answered with a generic message.
//
// # Payment Handler
//
//	paymentHandler := handler.NewPaymentHandler(checkoutService)
//
//	r.Post("/api/razorpay/verify-payment", paymentHandler.VerifyRazorpayPayment)
//	r.Get("/api/verify", paymentHandler.VerifyOrder)
//	r.Get("/api/registrations/{id}", paymentHandler.GetRegistration)
//
// VerifyRazorpayPayment answers with a flat JSON body:
//
//	{"success": true, "message": "Payment verified and stored", "orderId": "...", "paymentId": "..."}
//
// VerifyOrder redirects with 302 to /verify?payment_id=<merchantOrderId>
// once the order is registered, or to /failed when the gateway reports a
// failed payment. Other outcomes use the standard envelope:
//
//	{"code": 404, "success": false, "message": "Order not found"}
//
// # Health Handler
//
//	healthHandler := handler.NewHealthHandler(store, gatewayName, environment, version)
//	r.Get("/health", healthHandler.Check)
package handler
