package cookie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	jar := NewJar("")
	jar.Set("a", "1")
	jar.Set("b", "2")

	reloaded := NewJar(jar.String())
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, reloaded.Map())
}

func TestSetOverwritesInPlace(t *testing.T) {
	jar := NewJar("a=1;b=2")
	jar.Set("a", "3")

	assert.Equal(t, "a=3;b=2", jar.String())
	assert.Equal(t, 2, jar.Len())
}

func TestLoadString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "browser copied cookies",
			input:    "gksskpitn=cc662cd7; LF_ID=1587783958277-6056470-8195597;",
			expected: map[string]string{"gksskpitn": "cc662cd7", "LF_ID": "1587783958277-6056470-8195597"},
		},
		{
			name:     "fragments without equals are skipped",
			input:    "a=1;flag;b=2",
			expected: map[string]string{"a": "1", "b": "2"},
		},
		{
			name:     "value split on first equals only",
			input:    "token=abc==",
			expected: map[string]string{"token": "abc=="},
		},
		{
			name:     "empty",
			input:    "",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jar := NewJar("")
			jar.LoadString(tt.input)
			assert.Equal(t, tt.expected, jar.Map())
		})
	}
}

func TestLoadSetCookie(t *testing.T) {
	t.Run("expires attribute with comma", func(t *testing.T) {
		jar := NewJar("")
		jar.LoadSetCookie("foo=bar; expires=Wed, 09 Jun 2021 10:18:14 GMT, baz=qux; Path=/")
		assert.Equal(t, map[string]string{"foo": "bar", "baz": "qux"}, jar.Map())
	})

	t.Run("typical server header", func(t *testing.T) {
		jar := NewJar("auth_token=t1")
		jar.LoadSetCookie("session=s1; Expires=Thu, 10 Jun 2021 10:18:14 GMT; Path=/; HttpOnly, theme=dark; Path=/")

		token, ok := jar.Get("auth_token")
		require.True(t, ok)
		assert.Equal(t, "t1", token)
		assert.Equal(t, "auth_token=t1;session=s1;theme=dark", jar.String())
	})

	t.Run("merge overwrites existing", func(t *testing.T) {
		jar := NewJar("session=old")
		jar.LoadSetCookie("session=new; Path=/")
		v, _ := jar.Get("session")
		assert.Equal(t, "new", v)
	})
}
