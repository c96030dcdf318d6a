// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package purchases

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type mockSecrets struct {
	value *string
	err   error
	gotID string
}

func (m *mockSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.gotID = aws.ToString(in.SecretId)
	if m.err != nil {
		return nil, m.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: m.value}, nil
}

func TestSecretResolver_ResolveDSN(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		secret  *string
		apiErr  error
		want    string
		wantErr error
	}{
		{
			name:   "default key",
			secret: aws.String(`{"lambda_ecom_db":"postgres://app@db/shop","other":"x"}`),
			want:   "postgres://app@db/shop",
		},
		{
			name:   "custom key",
			key:    "reporting",
			secret: aws.String(`{"reporting":"postgres://ro@db/shop"}`),
			want:   "postgres://ro@db/shop",
		},
		{
			name:    "missing key",
			secret:  aws.String(`{"other":"x"}`),
			wantErr: ErrSecretKeyMissing,
		},
		{
			name:    "empty value",
			secret:  aws.String(`{"lambda_ecom_db":""}`),
			wantErr: ErrSecretKeyMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSecrets{value: tt.secret, err: tt.apiErr}
			r := NewSecretResolver(mock, tt.key)

			got, err := r.ResolveDSN(context.Background(), "prod/ecom")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if mock.gotID != "prod/ecom" {
				t.Errorf("expected secret id prod/ecom, got %q", mock.gotID)
			}
		})
	}
}

func TestSecretResolver_Failures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		boom := errors.New("access denied")
		r := NewSecretResolver(&mockSecrets{err: boom}, "")
		if _, err := r.ResolveDSN(context.Background(), "s"); !errors.Is(err, boom) {
			t.Errorf("expected wrapped api error, got %v", err)
		}
	})

	t.Run("binary secret", func(t *testing.T) {
		r := NewSecretResolver(&mockSecrets{}, "")
		if _, err := r.ResolveDSN(context.Background(), "s"); err == nil {
			t.Error("expected error for missing string value")
		}
	})

	t.Run("not json", func(t *testing.T) {
		r := NewSecretResolver(&mockSecrets{value: aws.String("plain")}, "")
		if _, err := r.ResolveDSN(context.Background(), "s"); err == nil {
			t.Error("expected decode error")
		}
	})
}
