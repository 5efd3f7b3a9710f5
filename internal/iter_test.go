package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSorted(t *testing.T) {
	assert := assert.New(t)

	table := map[string]int{"c": 3, "a": 1, "b": 2}

	var keys []string
	var values []int
	for key, value := range IterSorted(table) {
		keys = append(keys, key)
		values = append(values, value)
	}

	assert.Equal([]string{"a", "b", "c"}, keys)
	assert.Equal([]int{1, 2, 3}, values)
}

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	first := IterSorted(map[string]int{"y": 2, "x": 1})
	second := IterSorted(map[string]int{"z": 3})

	var keys []string
	for key := range IterSeq2Concat(first, second) {
		keys = append(keys, key)
	}
	assert.Equal([]string{"x", "y", "z"}, keys)

	// Early stop.
	keys = nil
	for key := range IterSeq2Concat(first, second) {
		keys = append(keys, key)
		if key == "y" {
			break
		}
	}
	assert.Equal([]string{"x", "y"}, keys)
}
