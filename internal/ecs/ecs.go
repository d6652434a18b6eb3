package ecs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/samber/lo"
)

var ErrServiceNotFound = errors.New("ecs service not found")

type ECSAPI interface {
	UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
}

type Provider struct {
	client ECSAPI
}

func (p *Provider) ForceRedeploy(ctx context.Context, cluster, service string) error {
	if _, err := p.client.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:            aws.String(cluster),
		Service:            aws.String(service),
		ForceNewDeployment: true,
	}); err != nil {
		return fmt.Errorf("failed to update service %s: %w", service, err)
	}

	return nil
}

func (p *Provider) IsInProgress(ctx context.Context, cluster, service string) (bool, error) {
	deployments, err := p.deployments(ctx, cluster, service)
	if err != nil {
		return false, err
	}

	return lo.ContainsBy(deployments, func(d types.Deployment) bool {
		return d.RolloutState == types.DeploymentRolloutStateInProgress
	}), nil
}

// FailedTaskCount sums failed tasks across every deployment of the service.
func (p *Provider) FailedTaskCount(ctx context.Context, cluster, service string) (int, error) {
	deployments, err := p.deployments(ctx, cluster, service)
	if err != nil {
		return 0, err
	}

	return lo.SumBy(deployments, func(d types.Deployment) int {
		return int(d.FailedTasks)
	}), nil
}

func (p *Provider) deployments(ctx context.Context, cluster, service string) ([]types.Deployment, error) {
	out, err := p.client.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{service},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe service %s: %w", service, err)
	}

	if len(out.Services) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, service)
	}

	return out.Services[0].Deployments, nil
}

func New(client ECSAPI) *Provider {
	return &Provider{client: client}
}
