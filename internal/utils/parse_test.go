package utils

import "testing"

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func TestDecodeLenient(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: `{"error":{"message":"quota exceeded"}}`, want: "quota exceeded"},
		{name: "truncated", input: `{"error":{"message":"quota exceeded"`, want: "quota exceeded"},
		{name: "trailing comma", input: `{"error":{"message":"x",},}`, want: "x"},
		{name: "wrong shape", input: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLenient[errorEnvelope]([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Error.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Error.Message, tt.want)
			}
		})
	}
}
