package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/stretchr/testify/assert"
)

// mockECRClient is a mock implementation of the ECR client for testing.
type mockECRClient struct {
	GetAuthorizationTokenFunc func(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
	DescribeRepositoriesFunc  func(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepositoryFunc      func(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
}

func (m *mockECRClient) GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error) {
	if m.GetAuthorizationTokenFunc != nil {
		return m.GetAuthorizationTokenFunc(ctx, params, optFns...)
	}
	return &ecr.GetAuthorizationTokenOutput{}, nil
}

func (m *mockECRClient) DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
	if m.DescribeRepositoriesFunc != nil {
		return m.DescribeRepositoriesFunc(ctx, params, optFns...)
	}
	return &ecr.DescribeRepositoriesOutput{}, nil
}

func (m *mockECRClient) CreateRepository(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
	if m.CreateRepositoryFunc != nil {
		return m.CreateRepositoryFunc(ctx, params, optFns...)
	}
	return &ecr.CreateRepositoryOutput{}, nil
}

func TestAuthorization(t *testing.T) {
	var gotRegistryIds []string
	sess := &Session{client: &mockECRClient{
		GetAuthorizationTokenFunc: func(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error) {
			gotRegistryIds = params.RegistryIds
			return &ecr.GetAuthorizationTokenOutput{
				AuthorizationData: []ecrtypes.AuthorizationData{
					{
						AuthorizationToken: aws.String("dG9rZW4="),
						ProxyEndpoint:      aws.String("https://123.dkr.ecr.us-east-1.amazonaws.com"),
					},
				},
			}, nil
		},
	}}
	auth, err := sess.Authorization(context.Background(), "123456789012")
	assert.NoError(t, err)
	assert.Equal(t, []string{"123456789012"}, gotRegistryIds)
	assert.Equal(t, "dG9rZW4=", auth.Token)
	assert.Equal(t, "https://123.dkr.ecr.us-east-1.amazonaws.com", auth.Endpoint)
}

func TestAuthorizationEmptyData(t *testing.T) {
	sess := &Session{client: &mockECRClient{}}
	_, err := sess.Authorization(context.Background(), "123456789012")
	assert.ErrorContains(t, err, "no authorization data")
}

func TestAuthorizationError(t *testing.T) {
	sess := &Session{client: &mockECRClient{
		GetAuthorizationTokenFunc: func(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error) {
			return nil, errors.New("access denied")
		},
	}}
	_, err := sess.Authorization(context.Background(), "123456789012")
	assert.ErrorContains(t, err, "failed to fetch authorization token")
}

func TestEnsureRepositoryExists(t *testing.T) {
	created := false
	sess := &Session{client: &mockECRClient{
		CreateRepositoryFunc: func(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
			created = true
			return &ecr.CreateRepositoryOutput{}, nil
		},
	}}
	name, err := sess.EnsureRepository(context.Background(), "team/app")
	assert.NoError(t, err)
	assert.Equal(t, "app", name)
	assert.False(t, created)
}

func TestEnsureRepositoryCreatesOnNotFound(t *testing.T) {
	var createInput *ecr.CreateRepositoryInput
	sess := &Session{client: &mockECRClient{
		DescribeRepositoriesFunc: func(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
			return nil, &ecrtypes.RepositoryNotFoundException{}
		},
		CreateRepositoryFunc: func(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
			createInput = params
			return &ecr.CreateRepositoryOutput{}, nil
		},
	}}
	name, err := sess.EnsureRepository(context.Background(), "app")
	assert.NoError(t, err)
	assert.Equal(t, "app", name)
	assert.NotNil(t, createInput)
	assert.Equal(t, "app", aws.ToString(createInput.RepositoryName))
	assert.True(t, createInput.ImageScanningConfiguration.ScanOnPush)
	assert.Equal(t, ecrtypes.ImageTagMutabilityMutable, createInput.ImageTagMutability)
}

func TestEnsureRepositoryLookupErrorSkipsCreate(t *testing.T) {
	created := false
	sess := &Session{client: &mockECRClient{
		DescribeRepositoriesFunc: func(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
			return nil, errors.New("throttled")
		},
		CreateRepositoryFunc: func(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
			created = true
			return &ecr.CreateRepositoryOutput{}, nil
		},
	}}
	_, err := sess.EnsureRepository(context.Background(), "app")
	assert.ErrorContains(t, err, "failed to look up repository")
	assert.False(t, created)
}

func TestEnsureRepositoryCreateError(t *testing.T) {
	sess := &Session{client: &mockECRClient{
		DescribeRepositoriesFunc: func(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
			return nil, &ecrtypes.RepositoryNotFoundException{}
		},
		CreateRepositoryFunc: func(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
			return nil, errors.New("limit exceeded")
		},
	}}
	_, err := sess.EnsureRepository(context.Background(), "app")
	assert.ErrorContains(t, err, "failed to create repository")
}

func TestDecodePassword(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("AWS:secret123"))
	password, err := DecodePassword(token)
	assert.NoError(t, err)
	assert.Equal(t, "secret123", password)
}

func TestDecodePasswordNotBase64(t *testing.T) {
	_, err := DecodePassword("not-base64!!!")
	assert.ErrorContains(t, err, "could not decode")
}

func TestDecodePasswordBadShape(t *testing.T) {
	for _, raw := range []string{"nocolon", "AWS:", ":secret", "a:b:c"} {
		token := base64.StdEncoding.EncodeToString([]byte(raw))
		_, err := DecodePassword(token)
		assert.ErrorContains(t, err, "unexpected authorization token format", raw)
	}
}
