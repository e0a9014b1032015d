package ssm

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	values  map[string]string
	calls   [][]string
	decrypt []bool
}

func (f *fakeClient) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.calls = append(f.calls, in.Names)
	f.decrypt = append(f.decrypt, aws.ToBool(in.WithDecryption))

	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		v, ok := f.values[name]
		if !ok {
			out.InvalidParameters = append(out.InvalidParameters, name)
			continue
		}
		out.Parameters = append(out.Parameters, types.Parameter{Name: aws.String(name), Value: aws.String(v)})
	}
	return out, nil
}

func TestFetchParameters(t *testing.T) {
	client := &fakeClient{values: map[string]string{"/a": "1", "/b": "2"}}

	var a, b string
	err := FetchParameters(context.Background(), client, map[string]*string{"/a": &a, "/b": &b}, WithDecryption())
	require.NoError(t, err)
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
	assert.Equal(t, []bool{true}, client.decrypt)
}

func TestFetchParameters_Missing(t *testing.T) {
	client := &fakeClient{values: map[string]string{"/a": "1"}}

	var a, b, c string
	err := FetchParameters(context.Background(), client, map[string]*string{"/a": &a, "/b": &b, "/c": &c}, WithOptional("/c"))
	require.ErrorIs(t, err, ErrParamsNotFound)
	assert.Contains(t, err.Error(), "/b")
	assert.NotContains(t, err.Error(), "/c")
}

func TestFetchParameters_Batches(t *testing.T) {
	client := &fakeClient{values: map[string]string{}}
	params := map[string]*string{}
	for i := range 23 {
		name := fmt.Sprintf("/p/%02d", i)
		client.values[name] = name
		params[name] = new(string)
	}

	require.NoError(t, FetchParameters(context.Background(), client, params))
	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0], 10)
	assert.Len(t, client.calls[2], 3)
	for name, dest := range params {
		assert.Equal(t, name, *dest)
	}
}
