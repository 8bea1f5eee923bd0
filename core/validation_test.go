package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	valid, _ := ParseDocument([]byte(`{"DeviceId": "ABC"}`))
	noDevice, _ := ParseDocument([]byte(`{"Summary": "x"}`))

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{name: "valid document", doc: valid, wantErr: nil},
		{name: "nil document", doc: nil, wantErr: ErrInvalidDocument},
		{name: "empty body", doc: NewDocument(1, nil, nil), wantErr: ErrEmptyDocument},
		{name: "array body", doc: NewDocument(1, []byte(`[]`), nil), wantErr: ErrNotObject},
		{name: "missing device id", doc: noDevice, wantErr: ErrMissingDeviceID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		vector  []float32
		dim     int
		wantErr error
	}{
		{name: "valid any dim", vector: []float32{1, 2}, dim: 0},
		{name: "valid exact dim", vector: []float32{1, 2, 3}, dim: 3},
		{name: "empty", vector: nil, dim: 3, wantErr: ErrInvalidEmbedding},
		{name: "wrong dim", vector: []float32{1, 2}, dim: 3, wantErr: ErrDimensionMismatch},
		{name: "nan", vector: []float32{float32(math.NaN())}, dim: 1, wantErr: ErrInvalidEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedding(tt.vector, tt.dim)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateEmbedding() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbedding() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if HasEmbedding(NewDocument(1, []byte(`{}`), []float32{1}), 2) {
		t.Errorf("HasEmbedding() accepted a vector of the wrong dimension")
	}
}
