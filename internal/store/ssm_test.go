package store

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// fakeSSM pages GetParametersByPath one parameter at a time.
type fakeSSM struct {
	params map[string]string
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	value, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}

	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(value)}}, nil
}

func (f *fakeSSM) PutParameter(ctx context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	name := aws.ToString(in.Name)
	if _, ok := f.params[name]; ok && !aws.ToBool(in.Overwrite) {
		return nil, &types.ParameterAlreadyExists{}
	}

	f.params[name] = aws.ToString(in.Value)

	return &ssm.PutParameterOutput{}, nil
}

func (f *fakeSSM) DeleteParameter(ctx context.Context, in *ssm.DeleteParameterInput, _ ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error) {
	name := aws.ToString(in.Name)
	if _, ok := f.params[name]; !ok {
		return nil, &types.ParameterNotFound{}
	}

	delete(f.params, name)

	return &ssm.DeleteParameterOutput{}, nil
}

func (f *fakeSSM) GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	names := make([]string, 0)
	for name := range f.params {
		if strings.HasPrefix(name, aws.ToString(in.Path)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	start := 0
	if in.NextToken != nil {
		for i, name := range names {
			if name == aws.ToString(in.NextToken) {
				start = i
			}
		}
	}

	out := &ssm.GetParametersByPathOutput{}
	if start < len(names) {
		out.Parameters = []types.Parameter{{Name: aws.String(names[start]), Value: aws.String(f.params[names[start]])}}
	}
	if start+1 < len(names) {
		out.NextToken = aws.String(names[start+1])
	}

	return out, nil
}

func Test_SSM(t *testing.T) {
	exerciseStore(t, NewSSM(&fakeSSM{params: make(map[string]string)}))
}
