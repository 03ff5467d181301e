package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
)

const mongoCollection = "properties"

// MongoTextIndex keeps a denormalized copy of listable properties in a
// collection with a $text index. It is fed by property events.
type MongoTextIndex struct {
	coll *mongo.Collection
}

func NewMongoTextIndex(db *mongo.Database) *MongoTextIndex {
	return &MongoTextIndex{coll: db.Collection(mongoCollection)}
}

// EnsureIndexes creates the text and keyset indexes if missing.
func (m *MongoTextIndex) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "location", Value: "text"},
			},
			Options: options.Index().SetName("properties_text"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("properties_listing"),
		},
	})
	return err
}

// Upsert replaces the indexed copy of p.
func (m *MongoTextIndex) Upsert(ctx context.Context, p *models.Property) error {
	doc := toPropertyDoc(p)
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoTextIndex) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

func (m *MongoTextIndex) Search(
	ctx context.Context,
	term string,
	f models.PropertyFilter,
	after *repositories.PageAfter,
	limit int,
) ([]*models.Property, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := m.coll.Find(ctx, mongoFilter(term, f, after), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Property
	for cur.Next(ctx) {
		var doc propertyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

// mongoFilter mirrors the structured predicates on top of $text.
func mongoFilter(term string, f models.PropertyFilter, after *repositories.PageAfter) bson.M {
	q := bson.M{
		"$text":  bson.M{"$search": term},
		"status": string(models.PropertyStatusAvailable),
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.Bedrooms != nil {
		q["bedrooms"] = bson.M{"$gte": *f.Bedrooms}
	}
	if f.Bathrooms != nil {
		q["bathrooms"] = bson.M{"$gte": *f.Bathrooms}
	}
	if f.PropertyType != nil {
		q["property_type"] = *f.PropertyType
	}
	if f.Location != nil {
		q["city"] = *f.Location
	}
	if after != nil {
		q["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": after.CreatedAt}},
			bson.M{"created_at": after.CreatedAt, "_id": bson.M{"$lt": after.ID.String()}},
		}
	}
	return q
}

type propertyDoc struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"owner_id"`
	OwnerName    string    `bson:"owner_name"`
	OwnerImage   *string   `bson:"owner_image,omitempty"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description"`
	Location     string    `bson:"location"`
	City         string    `bson:"city"`
	Price        float64   `bson:"price"`
	PriceType    string    `bson:"price_type"`
	Images       []string  `bson:"images"`
	Bedrooms     int       `bson:"bedrooms"`
	Bathrooms    float64   `bson:"bathrooms"`
	Guests       int       `bson:"guests"`
	Amenities    []string  `bson:"amenities"`
	Featured     bool      `bson:"featured"`
	Rating       float64   `bson:"rating"`
	ReviewCount  int       `bson:"review_count"`
	Latitude     *float64  `bson:"latitude,omitempty"`
	Longitude    *float64  `bson:"longitude,omitempty"`
	TimeZone     string    `bson:"time_zone"`
	PropertyType string    `bson:"property_type"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	RowVersion   int64     `bson:"row_version"`
}

func toPropertyDoc(p *models.Property) propertyDoc {
	return propertyDoc{
		ID:           p.ID.String(),
		OwnerID:      p.OwnerID.String(),
		OwnerName:    p.OwnerName,
		OwnerImage:   p.OwnerImage,
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		City:         p.City,
		Price:        p.Price,
		PriceType:    string(p.PriceType),
		Images:       p.Images,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Guests:       p.Guests,
		Amenities:    p.Amenities,
		Featured:     p.Featured,
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		TimeZone:     p.TimeZone,
		PropertyType: p.PropertyType,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:    p.UpdatedAt.UTC(),
		RowVersion:   p.RowVersion,
	}
}

func (d propertyDoc) toModel() (*models.Property, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, err
	}
	return &models.Property{
		Versioned:    models.Versioned{RowVersion: d.RowVersion},
		ID:           id,
		OwnerID:      owner,
		OwnerName:    d.OwnerName,
		OwnerImage:   d.OwnerImage,
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		City:         d.City,
		Price:        d.Price,
		PriceType:    models.PriceType(d.PriceType),
		Images:       d.Images,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Guests:       d.Guests,
		Amenities:    d.Amenities,
		Featured:     d.Featured,
		Rating:       d.Rating,
		ReviewCount:  d.ReviewCount,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		TimeZone:     d.TimeZone,
		PropertyType: d.PropertyType,
		Status:       models.PropertyStatus(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
