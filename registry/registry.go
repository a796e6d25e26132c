// Package registry talks to the ECR control plane: it fetches
// authorization tokens and makes sure the destination repository exists
// before anything is pushed to it.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/sirupsen/logrus"

	"ecrpush/refs"
)

// Username is the fixed username ECR expects on docker login. The actual
// credential is the decoded authorization token.
const Username = "AWS"

// ecrAPI is the subset of the ECR client this package uses.
type ecrAPI interface {
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepository(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
}

// Session is an authenticated handle on the ECR control plane for one
// named profile.
type Session struct {
	client ecrAPI
}

// NewSession loads the shared AWS configuration for the given profile and
// returns a Session backed by an ECR client. Credential and region
// resolution are left entirely to the SDK.
func NewSession(ctx context.Context, profile string) (*Session, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}
	return &Session{client: ecr.NewFromConfig(cfg)}, nil
}

// Authorization is the outcome of a token fetch: the combined base64
// token and the registry endpoint it is valid for.
type Authorization struct {
	Token    string
	Endpoint string
}

// Authorization fetches an authorization token for the given account
// number. ECR may return data for multiple registries, only the first
// entry is used.
func (s *Session) Authorization(ctx context.Context, account string) (*Authorization, error) {
	out, err := s.client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{
		RegistryIds: []string{account},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 {
		return nil, fmt.Errorf("no authorization data returned for account %s", account)
	}
	data := out.AuthorizationData[0]
	return &Authorization{
		Token:    aws.ToString(data.AuthorizationToken),
		Endpoint: aws.ToString(data.ProxyEndpoint),
	}, nil
}

// EnsureRepository makes sure a repository exists for the given image
// name, creating it with scan on push and mutable tags when it does not.
// The repository name is the last path segment of the image name. Returns
// the repository name.
func (s *Session) EnsureRepository(ctx context.Context, image string) (string, error) {
	name := refs.RepositoryName(image)
	_, err := s.client.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err == nil {
		return name, nil
	}
	var notFound *ecrtypes.RepositoryNotFoundException
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("failed to look up repository %s: %w", name, err)
	}
	if _, err := s.client.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(name),
		ImageScanningConfiguration: &ecrtypes.ImageScanningConfiguration{
			ScanOnPush: true,
		},
		ImageTagMutability: ecrtypes.ImageTagMutabilityMutable,
	}); err != nil {
		return "", fmt.Errorf("failed to create repository %s: %w", name, err)
	}
	logrus.Infof("created repository %s", name)
	return name, nil
}
