package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/models"
)

type mongoShelterRepo struct {
	col *mongo.Collection
}

func NewMongoShelterRepo(db *mongo.Database, collection string, log *zap.SugaredLogger) ShelterRepository {
	col := db.Collection(collection)
	// without the 2dsphere index every $nearSphere query fails
	_, err := col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		log.Errorw("shelter index creation failed", "collection", collection, "error", err)
	}
	return &mongoShelterRepo{col: col}
}

// buildShelterQuery translates a ShelterFilter into a mongo filter document.
func buildShelterQuery(f ShelterFilter) bson.M {
	q := bson.M{}

	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"address": re},
			bson.M{"notes": re},
		}
	}

	if len(f.Services) > 0 {
		q["services"] = bson.M{"$all": f.Services}
	}

	if f.Near != nil {
		q["location"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{f.Near.Lng, f.Near.Lat},
				},
				"$maxDistance": f.Near.RadiusMeters,
			},
		}
	}

	return q
}

func (r *mongoShelterRepo) List(ctx context.Context, filter ShelterFilter) ([]models.Shelter, error) {
	opts := options.Find()
	if filter.Near == nil {
		opts.SetSort(bson.D{{Key: "name", Value: 1}})
	}

	cur, err := r.col.Find(ctx, buildShelterQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	shelters := []models.Shelter{}
	if err := cur.All(ctx, &shelters); err != nil {
		return nil, err
	}
	return shelters, nil
}

func (r *mongoShelterRepo) GetByID(ctx context.Context, id string) (*models.Shelter, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var s models.Shelter
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, ErrShelterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoShelterRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Shelter, error) {
	if len(ids) == 0 {
		return []models.Shelter{}, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	shelters := []models.Shelter{}
	if err := cur.All(ctx, &shelters); err != nil {
		return nil, err
	}
	return shelters, nil
}

func (r *mongoShelterRepo) Create(ctx context.Context, s *models.Shelter) error {
	now := time.Now().UTC()
	s.DateAdded = now
	s.LastUpdated = now
	if s.Services == nil {
		s.Services = []string{}
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

func (r *mongoShelterRepo) Update(ctx context.Context, s *models.Shelter) error {
	s.LastUpdated = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrShelterNotFound
	}
	return nil
}

func (r *mongoShelterRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrShelterNotFound
	}
	return nil
}
