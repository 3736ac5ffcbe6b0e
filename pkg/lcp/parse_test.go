package lcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/matcher"
)

type event struct {
	kind   string
	pos    int
	refPos int
	length int
}

func recordEvents(out *[]event) Events {
	return Events{
		Literal: func(pos, length int) error {
			*out = append(*out, event{kind: "literal", pos: pos, length: length})
			return nil
		},
		Copy: func(pos, refPos, length int) error {
			*out = append(*out, event{kind: "copy", pos: pos, refPos: refPos, length: length})
			return nil
		},
		End: func() error {
			*out = append(*out, event{kind: "end"})
			return nil
		},
	}
}

func TestParse_EventStreams(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		ref     string
		matches []matcher.Match
		want    []event
	}{
		{
			name:   "empty target emits only end",
			target: "",
			ref:    "abc",
			want:   []event{{kind: "end"}},
		},
		{
			name:   "no matches emits one literal",
			target: "hello",
			ref:    "abc",
			want:   []event{{kind: "literal", pos: 0, length: 5}, {kind: "end"}},
		},
		{
			name:    "single full copy",
			target:  "aaaa",
			ref:     "aaaa",
			matches: []matcher.Match{{TargetPos: 0, RefPos: 0, Length: 4}},
			want:    []event{{kind: "copy", pos: 0, refPos: 0, length: 4}, {kind: "end"}},
		},
		{
			name:   "gaps become literals",
			target: "abcXYfghZZ",
			ref:    "abcdefghij",
			matches: []matcher.Match{
				{TargetPos: 0, RefPos: 0, Length: 3},
				{TargetPos: 5, RefPos: 5, Length: 3},
			},
			want: []event{
				{kind: "copy", pos: 0, refPos: 0, length: 3},
				{kind: "literal", pos: 3, length: 2},
				{kind: "copy", pos: 5, refPos: 5, length: 3},
				{kind: "literal", pos: 8, length: 2},
				{kind: "end"},
			},
		},
		{
			name:    "adjacent copies leave no literal",
			target:  "abab",
			ref:     "ab",
			matches: []matcher.Match{{TargetPos: 0, RefPos: 0, Length: 2}, {TargetPos: 2, RefPos: 0, Length: 2}},
			want: []event{
				{kind: "copy", pos: 0, refPos: 0, length: 2},
				{kind: "copy", pos: 2, refPos: 0, length: 2},
				{kind: "end"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []event
			err := Parse(tt.matches, syms(tt.target), syms(tt.ref), recordEvents(&got))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MalformedMatchesAreConstructionErrors(t *testing.T) {
	target := syms("abcdefgh")
	ref := syms("abcdefgh")

	tests := []struct {
		name    string
		matches []matcher.Match
	}{
		{"negative target position", []matcher.Match{{TargetPos: -1, RefPos: 0, Length: 2}}},
		{"negative reference position", []matcher.Match{{TargetPos: 0, RefPos: -1, Length: 2}}},
		{"zero length", []matcher.Match{{TargetPos: 0, RefPos: 0, Length: 0}}},
		{"past target end", []matcher.Match{{TargetPos: 6, RefPos: 6, Length: 3}}},
		{"past reference end", []matcher.Match{{TargetPos: 0, RefPos: 7, Length: 2}}},
		{"overlap", []matcher.Match{{TargetPos: 0, RefPos: 0, Length: 4}, {TargetPos: 3, RefPos: 3, Length: 2}}},
		{"out of order", []matcher.Match{{TargetPos: 4, RefPos: 4, Length: 2}, {TargetPos: 0, RefPos: 0, Length: 2}}},
		{"content mismatch", []matcher.Match{{TargetPos: 0, RefPos: 1, Length: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a recorder that must stay empty
			var got []event

			// When: parsing a broken match list
			err := Parse(tt.matches, target, ref, recordEvents(&got))

			// Then: the build aborts before any event
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConstruction)
			assert.True(t, errors.IsFatal(err))
			assert.Empty(t, got)
		})
	}
}

func TestParse_CallbackErrorAbortsWalk(t *testing.T) {
	// Given: a literal callback that fails
	var ends int
	ev := Events{
		Literal: func(int, int) error { return assert.AnError },
		End:     func() error { ends++; return nil },
	}

	// When: parsing a target with no matches
	err := Parse(nil, syms("xyz"), nil, ev)

	// Then: the error is wrapped and End is never reached
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConstruction)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, ends)
}

func TestParse_NilCallbacksAreIgnored(t *testing.T) {
	err := Parse([]matcher.Match{{TargetPos: 1, RefPos: 0, Length: 2}}, syms("xab"), syms("ab"), Events{})
	assert.NoError(t, err)
}
