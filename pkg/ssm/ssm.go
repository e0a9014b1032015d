// Package ssm fetches values from AWS Systems Manager Parameter Store.
//
//	var token, groupID string
//	err := ssm.FetchParameters(ctx, client, map[string]*string{
//		"/app/prod/channel-access-token": &token,
//		"/app/prod/group-id":             &groupID,
//	}, ssm.WithDecryption())
package ssm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// maxNamesPerCall is the GetParameters limit enforced by AWS.
const maxNamesPerCall = 10

// ErrParamsNotFound is returned when one or more requested parameters
// do not exist in the Parameter Store.
var ErrParamsNotFound = errors.New("params not found")

type Client interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

type FetchOptions struct {
	withDecryption bool
	optional       map[string]bool
}

type OptionsF func(*FetchOptions)

// WithDecryption decrypts SecureString parameters.
func WithDecryption() OptionsF {
	return func(o *FetchOptions) {
		o.withDecryption = true
	}
}

// WithOptional marks parameters whose absence is not an error; their
// destinations are left untouched.
func WithOptional(names ...string) OptionsF {
	return func(o *FetchOptions) {
		for _, n := range names {
			o.optional[n] = true
		}
	}
}

// FetchParameters retrieves the given parameters and writes each value to its
// destination pointer. Names are requested in batches of ten. Any required
// parameter missing from the store yields ErrParamsNotFound.
func FetchParameters(ctx context.Context, client Client, params map[string]*string, opts ...OptionsF) error {
	if len(params) == 0 {
		return nil
	}

	options := &FetchOptions{optional: map[string]bool{}}
	for _, o := range opts {
		o(options)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	var missing []string
	for batch := range slices.Chunk(names, maxNamesPerCall) {
		result, err := client.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          batch,
			WithDecryption: aws.Bool(options.withDecryption),
		})
		if err != nil {
			return fmt.Errorf("ssm get parameters: %w", err)
		}

		for _, name := range result.InvalidParameters {
			if !options.optional[name] {
				missing = append(missing, name)
			}
		}

		for _, param := range result.Parameters {
			if param.Name == nil || param.Value == nil {
				continue
			}
			if dest, ok := params[*param.Name]; ok {
				*dest = *param.Value
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrParamsNotFound, strings.Join(missing, ", "))
	}

	return nil
}
