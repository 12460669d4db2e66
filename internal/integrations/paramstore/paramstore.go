package paramstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Getter is the interface secret consumers depend on. Both sources below and
// test fakes satisfy it.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ssmAPI is the minimal AWS SSM surface required by SSM.
// *ssm.Client from aws-sdk-go-v2 satisfies it.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSM reads decrypted parameters from AWS Systems Manager Parameter Store,
// resolving names under a fixed prefix.
type SSM struct {
	api    ssmAPI
	prefix string
}

// NewSSM creates an SSM source. Parameter names passed to GetParameter are
// joined onto the prefix.
func NewSSM(api ssmAPI, prefix string) (*SSM, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: prefix must not be empty")
	}
	return &SSM{api: api, prefix: prefix}, nil
}

func (s *SSM) GetParameter(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}
	full := s.prefix + "/" + strings.TrimLeft(name, "/")

	withDecryption := true
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &full,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", full, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// Env resolves parameters from process environment variables. It is the
// source used when no SSM prefix is configured.
type Env struct{}

func (Env) GetParameter(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("paramstore: environment variable %s is not set", name)
	}
	return v, nil
}
