package bilibili

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowingUnmarshal(t *testing.T) {
	t.Run("mid as number", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"mid": 672328094, "uname": "somebody"}`), &f)
		require.NoError(t, err)
		assert.Equal(t, int64(672328094), f.Mid)
		assert.Equal(t, "somebody", f.Uname)
	})

	t.Run("mid as string", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"mid": "672328094", "uname": "somebody"}`), &f)
		require.NoError(t, err)
		assert.Equal(t, int64(672328094), f.Mid)
	})

	t.Run("missing mid", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"uname": "no id here"}`), &f)
		assert.Error(t, err)
	})

	t.Run("null mid", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"mid": null}`), &f)
		assert.Error(t, err)
	})

	t.Run("non-numeric mid", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"mid": "abc"}`), &f)
		assert.Error(t, err)
	})

	t.Run("negative mid", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`{"mid": -5}`), &f)
		assert.Error(t, err)
	})

	t.Run("not an object", func(t *testing.T) {
		var f Following
		err := json.Unmarshal([]byte(`"just a string"`), &f)
		assert.Error(t, err)
	})
}

func TestFollowingRoundTrip(t *testing.T) {
	// Extra profile fields must survive unmarshal and re-marshal verbatim
	original := `{"mid":672328094,"uname":"somebody","face":"https://example.com/a.jpg","sign":"hello","official_verify":{"type":-1}}`

	var f Following
	require.NoError(t, json.Unmarshal([]byte(original), &f))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, original, string(out))
}

func TestFollowingMarshalWithoutRaw(t *testing.T) {
	f := Following{Mid: 42, Uname: "built in code"}
	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mid":42,"uname":"built in code"}`, string(out))
}

func TestAttributeIsFollowing(t *testing.T) {
	tests := []struct {
		attr      Attribute
		following bool
	}{
		{AttrNone, false},
		{AttrWhispered, false},
		{AttrFollowing, true},
		{AttrMutual, true},
		{AttrBlocked, false},
	}

	for _, test := range tests {
		assert.Equal(t, test.following, test.attr.IsFollowing(), "attribute %d", int(test.attr))
	}
}

func TestFollowingsPageDecode(t *testing.T) {
	payload := `{"list":[{"mid":1,"uname":"a"},{"mid":"2","uname":"b"}],"total":2}`

	var page FollowingsPage
	require.NoError(t, json.Unmarshal([]byte(payload), &page))
	require.Len(t, page.List, 2)
	assert.Equal(t, int64(1), page.List[0].Mid)
	assert.Equal(t, int64(2), page.List[1].Mid)
	assert.Equal(t, 2, page.Total)
}
