package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store using MongoDB
type MongoStore struct {
	client        *mongo.Client
	payments      *mongo.Collection
	orders        *mongo.Collection
	registrations *mongo.Collection
}

// NewMongoStore connects, pings and ensures indexes
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:        client,
		payments:      db.Collection("payments"),
		orders:        db.Collection("orders"),
		registrations: db.Collection("registrations"),
	}

	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	// _id is unique already: payment id, merchant order id for registrations
	_, err := s.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "merchantOrderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create orders indexes: %w", err)
	}

	_, err = s.registrations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create registrations indexes: %w", err)
	}

	_, err = s.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "orderId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create payments indexes: %w", err)
	}

	return nil
}

// mongoAmount decodes the numeric types other writers use for money
// (double, int32, int64, Decimal128) and always encodes Decimal128
type mongoAmount struct {
	decimal.Decimal
}

func (a mongoAmount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(a.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d)
}

func (a *mongoAmount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return fmt.Errorf("decode decimal128 amount: %w", err)
		}
		a.Decimal = d
	case bsontype.Double:
		a.Decimal = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		a.Decimal = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		a.Decimal = decimal.NewFromInt(raw.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return fmt.Errorf("decode string amount: %w", err)
		}
		a.Decimal = d
	case bsontype.Null, bsontype.Undefined:
		a.Decimal = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %s into an amount", t)
	}
	return nil
}

type paymentDoc struct {
	ID        string      `bson:"_id"`
	OrderID   string      `bson:"orderId"`
	Signature string      `bson:"signature"`
	Name      string      `bson:"name"`
	Email     string      `bson:"email"`
	Phone     string      `bson:"phone,omitempty"`
	Amount    mongoAmount `bson:"amount"`
	BasePrice mongoAmount `bson:"basePrice"`
	GSTAmount mongoAmount `bson:"gstAmount"`
	PassID    string      `bson:"passId,omitempty"`
	CreatedAt time.Time   `bson:"createdAt"`
}

// orderDoc keeps _id as stored: orders written by the web app carry an
// ObjectId, orders created here carry a string
type orderDoc struct {
	ID               any           `bson:"_id"`
	MerchantOrderID  string        `bson:"merchantOrderId"`
	Name             string        `bson:"name"`
	Email            string        `bson:"email"`
	Phone            string        `bson:"phone,omitempty"`
	Amount           mongoAmount   `bson:"amount"`
	Type             string        `bson:"type"`
	ClassID          string        `bson:"classId"`
	NoOfParticipants int           `bson:"noOfParticipants"`
	Participants     []Participant `bson:"participantsData"`
	PaymentStatus    string        `bson:"paymentStatus"`
	MailSent         bool          `bson:"mailSent"`
	CreatedAt        time.Time     `bson:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"`
}

type registrationDoc struct {
	ID               string        `bson:"_id"`
	OrderID          string        `bson:"orderId"`
	Signature        string        `bson:"signature"`
	Name             string        `bson:"name"`
	Email            string        `bson:"email"`
	Phone            string        `bson:"phone,omitempty"`
	Amount           mongoAmount   `bson:"amount"`
	Type             string        `bson:"type"`
	ClassID          string        `bson:"classId"`
	NoOfParticipants int           `bson:"noOfParticipants"`
	Participants     []Participant `bson:"participantsData"`
	CreatedAt        time.Time     `bson:"createdAt"`
}

// documentID renders a raw _id as the string form used by the domain
func documentID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

func toPaymentDoc(p *Payment) paymentDoc {
	return paymentDoc{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Signature: p.Signature,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Amount:    mongoAmount{p.Amount},
		BasePrice: mongoAmount{p.BasePrice},
		GSTAmount: mongoAmount{p.GSTAmount},
		PassID:    p.PassID,
		CreatedAt: p.CreatedAt,
	}
}

func (d paymentDoc) toPayment() *Payment {
	return &Payment{
		ID:        d.ID,
		OrderID:   d.OrderID,
		Signature: d.Signature,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Amount:    d.Amount.Decimal,
		BasePrice: d.BasePrice.Decimal,
		GSTAmount: d.GSTAmount.Decimal,
		PassID:    d.PassID,
		CreatedAt: d.CreatedAt,
	}
}

func toOrderDoc(o *Order) orderDoc {
	return orderDoc{
		ID:               o.ID,
		MerchantOrderID:  o.MerchantOrderID,
		Name:             o.Name,
		Email:            o.Email,
		Phone:            o.Phone,
		Amount:           mongoAmount{o.Amount},
		Type:             string(o.Type),
		ClassID:          o.ClassID,
		NoOfParticipants: o.NoOfParticipants,
		Participants:     participantsOrEmpty(o.Participants),
		PaymentStatus:    string(o.PaymentStatus),
		MailSent:         o.MailSent,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func (d orderDoc) toOrder() *Order {
	return &Order{
		ID:               documentID(d.ID),
		MerchantOrderID:  d.MerchantOrderID,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		Amount:           d.Amount.Decimal,
		Type:             RegistrationType(d.Type),
		ClassID:          d.ClassID,
		NoOfParticipants: d.NoOfParticipants,
		Participants:     d.Participants,
		PaymentStatus:    PaymentStatus(d.PaymentStatus),
		MailSent:         d.MailSent,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		docID:            d.ID,
	}
}

// orderUpdate builds the filter and $set for SaveOrder. Only the fields
// reconciliation changes are written so fields owned by other writers survive.
func orderUpdate(o *Order) (filter, update bson.M) {
	var id any = o.ID
	if o.docID != nil {
		id = o.docID
	}
	filter = bson.M{"_id": id}
	update = bson.M{"$set": bson.M{
		"paymentStatus": string(o.PaymentStatus),
		"mailSent":      o.MailSent,
		"updatedAt":     o.UpdatedAt,
	}}
	return filter, update
}

func toRegistrationDoc(r *Registration) registrationDoc {
	return registrationDoc{
		ID:               r.ID,
		OrderID:          r.OrderID,
		Signature:        r.Signature,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Amount:           mongoAmount{r.Amount},
		Type:             string(r.Type),
		ClassID:          r.ClassID,
		NoOfParticipants: r.NoOfParticipants,
		Participants:     participantsOrEmpty(r.Participants),
		CreatedAt:        r.CreatedAt,
	}
}

func (d registrationDoc) toRegistration() *Registration {
	return &Registration{
		ID:               d.ID,
		OrderID:          d.OrderID,
		Signature:        d.Signature,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		Amount:           d.Amount.Decimal,
		Type:             RegistrationType(d.Type),
		ClassID:          d.ClassID,
		NoOfParticipants: d.NoOfParticipants,
		Participants:     d.Participants,
		CreatedAt:        d.CreatedAt,
	}
}

func (s *MongoStore) InsertPayment(ctx context.Context, p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.payments.InsertOne(ctx, toPaymentDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *MongoStore) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var doc paymentDoc
	err := s.payments.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return doc.toPayment(), nil
}

func (s *MongoStore) CreateOrder(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := s.orders.InsertOne(ctx, toOrderDoc(o))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) FindOrderByMerchantID(ctx context.Context, merchantOrderID string) (*Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"merchantOrderId": merchantOrderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toOrder(), nil
}

func (s *MongoStore) SaveOrder(ctx context.Context, o *Order) error {
	o.UpdatedAt = time.Now().UTC()
	filter, update := orderUpdate(o)

	res, err := s.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateRegistration(ctx context.Context, r *Registration) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.registrations.InsertOne(ctx, toRegistrationDoc(r))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *MongoStore) GetRegistration(ctx context.Context, merchantOrderID string) (*Registration, error) {
	var doc registrationDoc
	err := s.registrations.FindOne(ctx, bson.M{"_id": merchantOrderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return doc.toRegistration(), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
