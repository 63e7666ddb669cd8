// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-publish/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Nil(t, slice.Map[int, string](nil, strconv.Itoa))
	assert.Equal(t, []string{"1", "2"}, slice.Map([]int{1, 2}, strconv.Itoa))
}

func TestReduce(t *testing.T) {
	sum := slice.Reduce([]int{1, 2, 3}, 10, func(total, v int) int { return total + v })
	assert.Equal(t, 16, sum)
	assert.Equal(t, "x", slice.Reduce(nil, "x", func(acc string, v int) string { return acc + strconv.Itoa(v) }))
}
