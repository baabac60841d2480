package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assets(uris ...string) []MediaAsset {
	out := make([]MediaAsset, len(uris))
	for i, u := range uris {
		out[i] = MediaAsset{LocalURI: u}
	}
	return out
}

func TestSetCoverMovesSelectionToFront(t *testing.T) {
	in := assets("a", "b", "c", "d")

	out := SetCover(in, 2)
	got := make([]string, len(out))
	for i, a := range out {
		got[i] = a.LocalURI
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, got, "others keep their relative order")
}

func TestSetCoverNoOpCases(t *testing.T) {
	in := assets("a", "b", "c")

	assert.Equal(t, in, SetCover(in, 0), "index 0 is already the cover")
	assert.Equal(t, in, SetCover(in, -1))
	assert.Equal(t, in, SetCover(in, 3), "out of range leaves the list untouched")
	assert.Equal(t, in, SetCover(in, 99))
}

func TestSetCoverLastElement(t *testing.T) {
	in := assets("a", "b", "c")
	out := SetCover(in, 2)
	assert.Equal(t, "c", out[0].LocalURI)
	assert.Equal(t, "a", out[1].LocalURI)
	assert.Equal(t, "b", out[2].LocalURI)
}

func TestValidateServiceDraft(t *testing.T) {
	valid := ServiceDraft{
		Name:  "Haircut",
		Price: 30,
		Media: assets("staged://x"),
	}
	assert.NoError(t, ValidateServiceDraft(valid))

	cases := []struct {
		name   string
		mutate func(*ServiceDraft)
	}{
		{"missing name", func(d *ServiceDraft) { d.Name = "" }},
		{"zero price", func(d *ServiceDraft) { d.Price = 0 }},
		{"negative price", func(d *ServiceDraft) { d.Price = -5 }},
		{"negative discount", func(d *ServiceDraft) { d.Discount = -1 }},
		{"discount above price", func(d *ServiceDraft) { d.Discount = 31 }},
		{"no media", func(d *ServiceDraft) { d.Media = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			assert.ErrorIs(t, ValidateServiceDraft(d), ErrValidation)
		})
	}

	// Discount equal to price is allowed.
	d := valid
	d.Discount = d.Price
	assert.NoError(t, ValidateServiceDraft(d))
}

func TestValidateMenuItemDraft(t *testing.T) {
	valid := MenuItemDraft{
		Name:  "Pasta",
		Price: 12,
		Media: assets("staged://x"),
	}
	assert.NoError(t, ValidateMenuItemDraft(valid))

	cases := []struct {
		name   string
		mutate func(*MenuItemDraft)
	}{
		{"missing name", func(d *MenuItemDraft) { d.Name = "" }},
		{"zero price", func(d *MenuItemDraft) { d.Price = 0 }},
		{"negative percent", func(d *MenuItemDraft) { d.DiscountPercent = -1 }},
		{"percent at 100", func(d *MenuItemDraft) { d.DiscountPercent = 100 }},
		{"no media", func(d *MenuItemDraft) { d.Media = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			assert.ErrorIs(t, ValidateMenuItemDraft(d), ErrValidation)
		})
	}

	d := valid
	d.DiscountPercent = 99
	assert.NoError(t, ValidateMenuItemDraft(d))
}

func TestMediaAssetUploaded(t *testing.T) {
	assert.False(t, MediaAsset{LocalURI: "staged://x"}.Uploaded())
	assert.True(t, MediaAsset{RemoteURL: "https://bucket/x.jpg"}.Uploaded())
}
