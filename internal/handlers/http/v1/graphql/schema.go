package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339Nano)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(time.RFC3339Nano)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	commentType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Comment",
			Fields: graphql.Fields{
				"author":    &graphql.Field{Type: graphql.String},
				"text":      &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: DateTime},
			},
		},
	)

	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":          &graphql.Field{Type: graphql.ID},
				"title":       &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"contact":     &graphql.Field{Type: graphql.String},
				"comments":    &graphql.Field{Type: graphql.NewList(commentType)},
				"createdAt":   &graphql.Field{Type: DateTime},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"posts": getPostsQuery(gh, postType),
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"createPost": createPostMutation(gh, postType),
				"addComment": addCommentMutation(gh, postType),
			},
		},
	)

	schema, err := graphql.NewSchema(
		graphql.SchemaConfig{
			Query:    queryType,
			Mutation: mutationType,
		},
	)
	if err != nil {
		return err
	}
	gh.schema = schema
	return nil
}
