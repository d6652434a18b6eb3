package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSM keeps parameters in AWS Systems Manager Parameter Store.
type SSM struct {
	client SSMAPI
}

func (s *SSM) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(key)})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to get parameter %s: %w", key, err)
	}

	return aws.ToString(out.Parameter.Value), nil
}

func (s *SSM) Put(ctx context.Context, key, value string, overwrite bool) error {
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(key),
		Value:     aws.String(value),
		Type:      types.ParameterTypeString,
		Tier:      types.ParameterTierStandard,
		Overwrite: aws.Bool(overwrite),
	})
	if err != nil {
		var exists *types.ParameterAlreadyExists
		if errors.As(err, &exists) {
			return ErrAlreadyExists
		}

		return fmt.Errorf("failed to put parameter %s: %w", key, err)
	}

	return nil
}

func (s *SSM) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(key)})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to delete parameter %s: %w", key, err)
	}

	return nil
}

func (s *SSM) List(ctx context.Context, prefix string) ([]KV, error) {
	path := strings.TrimSuffix(prefix, "/")
	if path == "" {
		path = "/"
	}

	paginator := ssm.NewGetParametersByPathPaginator(s.client, &ssm.GetParametersByPathInput{
		Path:      aws.String(path),
		Recursive: aws.Bool(true),
	})

	kvs := make([]KV, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list parameters under %s: %w", path, err)
		}

		for _, param := range page.Parameters {
			name := aws.ToString(param.Name)
			if !strings.HasPrefix(name, prefix) {
				continue
			}

			kvs = append(kvs, KV{Key: name, Value: aws.ToString(param.Value)})
		}
	}

	return kvs, nil
}

func NewSSM(client SSMAPI) *SSM {
	return &SSM{client: client}
}
