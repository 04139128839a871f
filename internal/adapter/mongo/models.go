package mongo

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartLineDocument struct {
	ProductID string               `bson:"id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image"`
	Quantity  int                  `bson:"quantity"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	PasswordHash string             `bson:"password"`
	Role         string             `bson:"role"`
	Cart         []cartLineDocument `bson:"cart"`
	CartVersion  int64              `bson:"cart_version"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type productDocument struct {
	ID          string                `bson:"_id"`
	Name        string                `bson:"name"`
	Price       primitive.Decimal128  `bson:"price"`
	OldPrice    *primitive.Decimal128 `bson:"old_price,omitempty"`
	Category    string                `bson:"category"`
	Description string                `bson:"description"`
	Image       string                `bson:"image"`
	Badge       string                `bson:"badge,omitempty"`
	CreatedAt   time.Time             `bson:"created_at"`
}

type wishlistDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ProductID string             `bson:"product_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type subscriberDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	SubscribedAt time.Time          `bson:"subscribed_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid decimal %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored decimal %s: %w", v.String(), err)
	}
	return d, nil
}

func toCartLineDocuments(lines []entity.CartLine) ([]cartLineDocument, error) {
	docs := make([]cartLineDocument, 0, len(lines))
	for _, line := range lines {
		price, err := toDecimal128(line.Price)
		if err != nil {
			return nil, fmt.Errorf("cart line %s: %w", line.ID, err)
		}
		docs = append(docs, cartLineDocument{
			ProductID: line.ID,
			Name:      line.Name,
			Price:     price,
			Image:     line.Image,
			Quantity:  line.Quantity,
		})
	}
	return docs, nil
}

func toCartLines(docs []cartLineDocument) ([]entity.CartLine, error) {
	lines := make([]entity.CartLine, 0, len(docs))
	for _, doc := range docs {
		price, err := fromDecimal128(doc.Price)
		if err != nil {
			return nil, fmt.Errorf("cart line %s: %w", doc.ProductID, err)
		}
		lines = append(lines, entity.CartLine{
			ID:       doc.ProductID,
			Name:     doc.Name,
			Price:    price,
			Image:    doc.Image,
			Quantity: doc.Quantity,
		})
	}
	return lines, nil
}

func (d *userDocument) toEntity() (*entity.User, error) {
	cart, err := toCartLines(d.Cart)
	if err != nil {
		return nil, err
	}
	return &entity.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Cart:         cart,
		CartVersion:  d.CartVersion,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func fromUserEntity(u *entity.User) (*userDocument, error) {
	cart, err := toCartLineDocuments(u.Cart)
	if err != nil {
		return nil, err
	}
	doc := &userDocument{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Cart:         cart,
		CartVersion:  u.CartVersion,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %s: %w", u.ID, err)
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d *productDocument) toEntity() (*entity.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", d.ID, err)
	}
	p := &entity.Product{
		ID:          d.ID,
		Name:        d.Name,
		Price:       price,
		Category:    entity.Category(d.Category),
		Description: d.Description,
		Image:       d.Image,
		Badge:       d.Badge,
	}
	if d.OldPrice != nil {
		old, err := fromDecimal128(*d.OldPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", d.ID, err)
		}
		p.OldPrice = &old
	}
	return p, nil
}

func fromProductEntity(p *entity.Product, createdAt time.Time) (*productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", p.ID, err)
	}
	doc := &productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Price:       price,
		Category:    string(p.Category),
		Description: p.Description,
		Image:       p.Image,
		Badge:       p.Badge,
		CreatedAt:   createdAt,
	}
	if p.OldPrice != nil {
		old, err := toDecimal128(*p.OldPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.ID, err)
		}
		doc.OldPrice = &old
	}
	return doc, nil
}
