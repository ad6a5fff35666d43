package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wfm_flipper/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Sign in payload",
			input:  []byte(`{"email":"tenno@example.com","password":"abc123"}`),
			output: []byte(`{"email":"[MASKED]","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Login response token",
			input:  []byte(`{"success":true,"token":"eyJhbGciOiJIUzI1NiJ9","username":"Tenno"}`),
			output: []byte(`{"success":true,"token":"[MASKED]","username":"Tenno"}`),
		},
		{
			name:   "Bearer and CSRF headers",
			input:  []byte("POST /v1/profile/orders HTTP/1.1\r\nAuthorization: Bearer abc.def\r\nX-Csrf-Token: abc.def\r\n\r\n"),
			output: []byte("POST /v1/profile/orders HTTP/1.1\r\nAuthorization: Bearer [MASKED]\r\nX-Csrf-Token: [MASKED]\r\n\r\n"),
		},
		{
			name:   "JWT cookie",
			input:  []byte("HTTP/1.1 200 OK\r\nSet-Cookie: JWT=abc.def; Path=/; HttpOnly\r\n\r\n"),
			output: []byte("HTTP/1.1 200 OK\r\nSet-Cookie: JWT=[MASKED]; Path=/; HttpOnly\r\n\r\n"),
		},
		{
			name:   "Nothing to mask",
			input:  []byte(`{"item_name":"Ash Prime Set","platinum":120}`),
			output: []byte(`{"item_name":"Ash Prime Set","platinum":120}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}
