package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/board-service/internal/repository"
	"github.com/gfdmit/web-forum/board-service/internal/service"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context())
	if err != nil {
		abortWithMessage(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	fields, err := readTextFields(c.Request.Body, "title", "description", "contact")
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, err)
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), service.PostInput{
		Title:       fields["title"],
		Description: fields["description"],
		Contact:     fields["contact"],
	})
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// AddComment handles POST /api/posts/:id/comments.
func (h *Handler) AddComment(c *gin.Context) {
	fields, err := readTextFields(c.Request.Body, "author", "text")
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, err)
		return
	}

	post, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), service.CommentInput{
		Author: fields["author"],
		Text:   fields["text"],
	})
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			abortWithMessage(c, http.StatusNotFound, repository.ErrPostNotFound)
			return
		}
		abortWithMessage(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func abortWithMessage(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"message": err.Error()})
}

// readTextFields decodes a JSON object and coerces the named keys to optional
// text. Other keys are ignored. An empty body counts as an empty object.
func readTextFields(body io.Reader, keys ...string) (map[string]*string, error) {
	raw := map[string]any{}
	if body != nil {
		dec := json.NewDecoder(body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	fields := make(map[string]*string, len(keys))
	for _, key := range keys {
		v, err := coerceText(key, raw[key])
		if err != nil {
			return nil, err
		}
		fields[key] = v
	}
	return fields, nil
}

// coerceText turns a decoded JSON value into optional text. Scalars are
// stringified; objects and arrays are rejected.
func coerceText(key string, v any) (*string, error) {
	var s string
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = v
	case json.Number:
		s = v.String()
	case bool:
		s = strconv.FormatBool(v)
	default:
		data, _ := json.Marshal(v)
		return nil, fmt.Errorf("Cast to string failed for value %s at path %q", data, key)
	}
	return &s, nil
}
