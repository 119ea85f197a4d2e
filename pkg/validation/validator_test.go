package validation

import (
	"errors"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookInput struct {
	Title  string `json:"title" validate:"required,notblank,max=200"`
	Status string `json:"status" validate:"omitempty,bookstatus"`
	Rating *int   `json:"rating" validate:"omitempty,rating"`
	Pages  *int   `json:"pages" validate:"omitempty,pagecount"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	Register(v)
	return v
}

func intp(n int) *int { return &n }

func TestToDetails_UsesJSONNamesAndAliasMessages(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(bookInput{
		Title:  "   ",
		Status: "abandoned",
		Rating: intp(6),
		Pages:  intp(0),
		Email:  "nope",
	})
	require.Error(t, err)

	got := ToDetails(err)
	assert.Equal(t, map[string]string{
		"title":  "must not be blank",
		"status": "must be one of: want-to-read, reading, finished",
		"rating": "must be between 1 and 5",
		"pages":  "must be between 1 and 100000",
		"email":  "must be a valid email",
	}, got)
}

func TestToDetails_ValidInputPasses(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(bookInput{Title: "Dune", Status: "reading", Rating: intp(5), Pages: intp(412)})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetails_NonValidatorErrors(t *testing.T) {
	assert.Equal(t, map[string]string{"query": "must be numeric"},
		ToDetails(&strconv.NumError{Func: "Atoi", Num: "x", Err: strconv.ErrSyntax}))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("eof")))
}

func TestFormatFieldError_MinMaxByKind(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"max=3"`
		Goal int    `json:"goal" validate:"goal"`
	}
	v := newValidator(t)
	got := ToDetails(v.Struct(in{Name: "abcd", Goal: 0}))
	assert.Equal(t, "must be at most 3 characters long", got["name"])
	assert.Equal(t, "must be between 1 and 1000", got["goal"])
}

func TestPageCount_HasCeiling(t *testing.T) {
	v := newValidator(t)
	for _, pages := range []int{100001, 4294967297} {
		got := ToDetails(v.Struct(bookInput{Title: "Dune", Pages: intp(pages)}))
		assert.Equal(t, "must be between 1 and 100000", got["pages"], "pages=%d", pages)
	}
	assert.NoError(t, v.Struct(bookInput{Title: "Dune", Pages: intp(100000)}))
}
