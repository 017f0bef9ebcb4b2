package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"blocks-cms/internal/domain/errs"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.ValidationErrors{errs.Missing("name")}, http.StatusUnprocessableEntity},
		{&errs.UniqueError{Table: "blocks", Err: errs.ValidationErrors{errs.Invalid("handle", "taken")}}, http.StatusConflict},
		{fmt.Errorf("%w: body", errs.ErrPublishConflict), http.StatusConflict},
		{errs.NotFound("draft", "x"), http.StatusNotFound},
		{fmt.Errorf("model X: %w", errs.ErrUnknownModel), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}
