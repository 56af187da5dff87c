package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leonjames-san/familiams/internal/cart/domain"
	"github.com/leonjames-san/familiams/internal/money"
)

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository returns a CartRepository backed by the "carts"
// collection of the given database.
func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{collection: db.Collection("carts")}
}

// cartDoc is the persisted shape of a cart. Prices are stored as decimal
// strings so no precision is lost in BSON.
type cartDoc struct {
	SessionID string    `bson:"_id"`
	Lines     []lineDoc `bson:"lines"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type lineDoc struct {
	ItemID      string `bson:"item_id"`
	Kind        string `bson:"kind"`
	DisplayName string `bson:"display_name"`
	ImageRef    string `bson:"image_ref,omitempty"`
	SellerName  string `bson:"seller_name,omitempty"`
	UnitPrice   string `bson:"unit_price"`
	Quantity    int    `bson:"quantity"`
}

func (m *mongoRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var doc cartDoc

	filter := bson.M{"_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return docToCart(&doc)
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	doc := cartToDoc(cart)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	doc.UpdatedAt = time.Now()

	filter := bson.M{"_id": cart.SessionID}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, sessionID string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *mongoRepository) DeleteIdleCarts(ctx context.Context, idleFor time.Duration) (int64, error) {
	cutoff := time.Now().Add(-idleFor)
	res, err := m.collection.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle carts: %w", err)
	}
	return res.DeletedCount, nil
}

func cartToDoc(cart *domain.Cart) *cartDoc {
	lines := make([]lineDoc, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineDoc{
			ItemID:      l.ID,
			Kind:        string(l.Kind),
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			SellerName:  l.SellerName,
			UnitPrice:   l.UnitPrice.String(),
			Quantity:    l.Quantity,
		})
	}
	return &cartDoc{
		SessionID: cart.SessionID,
		Lines:     lines,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

func docToCart(doc *cartDoc) (*domain.Cart, error) {
	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		price, err := money.Parse(l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("stored cart %s has bad unit price: %w", doc.SessionID, err)
		}
		lines = append(lines, domain.CartLine{
			ID:          l.ItemID,
			Kind:        domain.ItemKind(l.Kind),
			DisplayName: l.DisplayName,
			ImageRef:    l.ImageRef,
			SellerName:  l.SellerName,
			UnitPrice:   price,
			Quantity:    l.Quantity,
		})
	}
	return &domain.Cart{
		SessionID: doc.SessionID,
		Lines:     lines,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
