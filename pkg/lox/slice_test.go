package lox_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"wfm_flipper/pkg/lox"
)

func TestMap(t *testing.T) {
	rq := require.New(t)

	rq.Equal([]string{"1", "2", "3"}, lox.Map([]int{1, 2, 3}, strconv.Itoa))
	rq.Empty(lox.Map(nil, strconv.Itoa))
}
