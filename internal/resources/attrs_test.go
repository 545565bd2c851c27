package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "sorts object keys",
			in:   `{"b": 1, "a": 2}`,
			want: `{"a":2,"b":1}`,
		},
		{
			name: "strips whitespace recursively",
			in:   "{\n  \"outer\": { \"z\": true, \"a\": [1, 2] }\n}",
			want: `{"outer":{"a":[1,2],"z":true}}`,
		},
		{
			name: "array order is preserved",
			in:   `["b", "a"]`,
			want: `["b","a"]`,
		},
		{
			name:    "rejects non-JSON",
			in:      "Version: 2012-10-17",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CanonicalJSON(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalJSON_EqualDocumentsCompareEqual(t *testing.T) {
	t.Parallel()

	a, err := CanonicalJSON(`{"Statement": [{"Effect": "Allow", "Action": "*"}], "Version": "2012-10-17"}`)
	require.NoError(t, err)
	b, err := CanonicalJSON(`{"Version":"2012-10-17","Statement":[{"Action":"*","Effect":"Allow"}]}`)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSplitObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{key: "kube-system/ingress-controller", wantNamespace: "kube-system", wantName: "ingress-controller"},
		{key: "default/sa", wantNamespace: "default", wantName: "sa"},
		{key: "no-separator", wantErr: true},
		{key: "/name-only", wantErr: true},
		{key: "namespace-only/", wantErr: true},
		{key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			namespace, name, err := splitObjectKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, namespace)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
