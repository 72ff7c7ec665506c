package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadURL_EscapesPath(t *testing.T) {
	got := DownloadURL(DefaultDownloadHost, "health-care.appspot.com", "users/u1/predictions/skin/a b.png", "tok-1")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/health-care.appspot.com/o/users%2Fu1%2Fpredictions%2Fskin%2Fa%20b.png?alt=media&token=tok-1",
		got)
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "a", firstToken("a,b"))
	assert.Equal(t, "a", firstToken(" a "))
	assert.Equal(t, "", firstToken(""))
}

func TestMemory_WriteOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("http://blob.local")

	require.NoError(t, m.Upload(ctx, "p/x.png", []byte("first"), "image/png"))
	require.NoError(t, m.Upload(ctx, "p/x.png", []byte("second"), "image/png"))

	obj, ok := m.Get("p/x.png")
	require.True(t, ok)
	assert.Equal(t, "first", string(obj.Data))

	url, err := m.RetrievalURL(ctx, "p/x.png")
	require.NoError(t, err)
	assert.Contains(t, url, "p%2Fx.png")

	_, err = m.RetrievalURL(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
