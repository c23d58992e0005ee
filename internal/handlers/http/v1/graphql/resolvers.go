package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/gfdmit/web-forum/board-service/internal/service"
)

func getPostsQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(postType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.ListPosts(p.Context)
		},
	}
}

func createPostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewInputObject(
					graphql.InputObjectConfig{
						Name: "CreatePostInput",
						Fields: graphql.InputObjectConfigFieldMap{
							"title":       &graphql.InputObjectFieldConfig{Type: graphql.String},
							"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
							"contact":     &graphql.InputObjectFieldConfig{Type: graphql.String},
						},
					},
				),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input, _ := p.Args["input"].(map[string]interface{})
			return gh.svc.CreatePost(p.Context, service.PostInput{
				Title:       optString(input, "title"),
				Description: optString(input, "description"),
				Contact:     optString(input, "contact"),
			})
		},
	}
}

func addCommentMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewInputObject(
					graphql.InputObjectConfig{
						Name: "AddCommentInput",
						Fields: graphql.InputObjectConfigFieldMap{
							"author": &graphql.InputObjectFieldConfig{Type: graphql.String},
							"text":   &graphql.InputObjectFieldConfig{Type: graphql.String},
						},
					},
				),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			postID, _ := p.Args["postId"].(string)
			input, _ := p.Args["input"].(map[string]interface{})
			return gh.svc.AddComment(p.Context, postID, service.CommentInput{
				Author: optString(input, "author"),
				Text:   optString(input, "text"),
			})
		},
	}
}

// optString reads an optional string argument; a missing key or null is nil.
func optString(args map[string]interface{}, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}
