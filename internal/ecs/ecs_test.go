package ecs

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeECS struct {
	updated  []ecs.UpdateServiceInput
	services []types.Service
}

func (f *fakeECS) UpdateService(_ context.Context, params *ecs.UpdateServiceInput, _ ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error) {
	f.updated = append(f.updated, *params)
	return &ecs.UpdateServiceOutput{}, nil
}

func (f *fakeECS) DescribeServices(_ context.Context, _ *ecs.DescribeServicesInput, _ ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	return &ecs.DescribeServicesOutput{Services: f.services}, nil
}

func Test_ForceRedeploy(t *testing.T) {
	client := &fakeECS{}

	require.NoError(t, New(client).ForceRedeploy(context.Background(), "cluster", "service"))

	require.Len(t, client.updated, 1)
	assert.Equal(t, "cluster", aws.ToString(client.updated[0].Cluster))
	assert.Equal(t, "service", aws.ToString(client.updated[0].Service))
	assert.True(t, client.updated[0].ForceNewDeployment)
}

func Test_Status(t *testing.T) {
	tests := []struct {
		name        string
		deployments []types.Deployment
		inProgress  bool
		failed      int
	}{
		{
			name: "rolling",
			deployments: []types.Deployment{
				{RolloutState: types.DeploymentRolloutStateInProgress, FailedTasks: 2},
				{RolloutState: types.DeploymentRolloutStateCompleted, FailedTasks: 1},
			},
			inProgress: true,
			failed:     3,
		},
		{
			name: "settled",
			deployments: []types.Deployment{
				{RolloutState: types.DeploymentRolloutStateCompleted},
			},
		},
		{
			name: "failed rollout",
			deployments: []types.Deployment{
				{RolloutState: types.DeploymentRolloutStateFailed, FailedTasks: 10},
			},
			failed: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := New(&fakeECS{services: []types.Service{{Deployments: tt.deployments}}})

			inProgress, err := provider.IsInProgress(context.Background(), "cluster", "service")
			require.NoError(t, err)
			assert.Equal(t, tt.inProgress, inProgress)

			failed, err := provider.FailedTaskCount(context.Background(), "cluster", "service")
			require.NoError(t, err)
			assert.Equal(t, tt.failed, failed)
		})
	}
}

func Test_ServiceNotFound(t *testing.T) {
	_, err := New(&fakeECS{}).IsInProgress(context.Background(), "cluster", "service")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
