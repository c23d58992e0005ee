package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

type commentDocument struct {
	Author    *string   `bson:"author,omitempty"`
	Text      *string   `bson:"text,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type postDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       *string            `bson:"title,omitempty"`
	Description *string            `bson:"description,omitempty"`
	Contact     *string            `bson:"contact,omitempty"`
	Comments    []commentDocument  `bson:"comments"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type mongoRepository struct {
	client *mongo.Client
	posts  *mongo.Collection
}

func New(ctx context.Context, conf config.Mongo, timeout time.Duration, log *logrus.Logger) (*mongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("client.Ping: %w", err)
	}
	log.WithField("db", conf.DB).Info("[MONGO] connected")

	posts := client.Database(conf.DB).Collection(conf.Collection)
	_, err = posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create createdAt index: %w", err)
	}

	return &mongoRepository{
		client: client,
		posts:  posts,
	}, nil
}

func (mr *mongoRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return mr.find(ctx, bson.D{}, opts)
}

func (mr *mongoRepository) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	doc := toDocument(p)
	doc.ID = primitive.NewObjectID()

	if _, err := mr.posts.InsertOne(ctx, doc); err != nil {
		return model.Post{}, err
	}
	return fromDocument(doc), nil
}

func (mr *mongoRepository) GetPost(ctx context.Context, id string) (model.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return model.Post{}, err
	}

	var doc postDocument
	err = mr.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Post{}, repository.ErrPostNotFound
		}
		return model.Post{}, err
	}
	return fromDocument(doc), nil
}

func (mr *mongoRepository) SavePost(ctx context.Context, p model.Post) (model.Post, error) {
	oid, err := parseID(p.ID)
	if err != nil {
		return model.Post{}, err
	}
	doc := toDocument(p)
	doc.ID = oid

	res, err := mr.posts.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return model.Post{}, err
	}
	if res.MatchedCount == 0 {
		return model.Post{}, repository.ErrPostNotFound
	}
	return fromDocument(doc), nil
}

func (mr *mongoRepository) ExpiredPosts(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
	return mr.find(ctx, expiredFilter(cutoff))
}

func (mr *mongoRepository) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := mr.posts.DeleteMany(ctx, expiredFilter(cutoff))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (mr *mongoRepository) Close(ctx context.Context) error {
	return mr.client.Disconnect(ctx)
}

func (mr *mongoRepository) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]model.Post, error) {
	cur, err := mr.posts.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, fromDocument(doc))
	}
	return posts, nil
}

func expiredFilter(cutoff time.Time) bson.M {
	return bson.M{"createdAt": bson.M{"$lt": cutoff}}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("Cast to ObjectId failed for value %q: %w", id, err)
	}
	return oid, nil
}

// toDocument truncates timestamps to the millisecond precision BSON stores so
// the returned post matches what a later read yields.
func toDocument(p model.Post) postDocument {
	comments := make([]commentDocument, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentDocument{
			Author:    c.Author,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.UTC().Truncate(time.Millisecond),
		})
	}
	return postDocument{
		Title:       p.Title,
		Description: p.Description,
		Contact:     p.Contact,
		Comments:    comments,
		CreatedAt:   p.CreatedAt.UTC().Truncate(time.Millisecond),
	}
}

func fromDocument(doc postDocument) model.Post {
	comments := make([]model.Comment, 0, len(doc.Comments))
	for _, c := range doc.Comments {
		comments = append(comments, model.Comment{
			Author:    c.Author,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.UTC(),
		})
	}
	return model.Post{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Contact:     doc.Contact,
		Comments:    comments,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
}
