package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessWithPagination(t *testing.T) {
	resp := SuccessWithPagination(200, []string{"a", "b"}, 2, 20, 45)

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, int64(3), resp.Meta.TotalPages)
}

func TestSuccessWithPaginationExactFit(t *testing.T) {
	resp := SuccessWithPagination(200, nil, 1, 20, 40)
	assert.Equal(t, int64(2), resp.Meta.TotalPages)
}

func TestErrorResponse(t *testing.T) {
	resp := Error(400, "bad input")
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "bad input", resp.Error)
	assert.Nil(t, resp.Data)
}
