/*
Copyright 2025 The Crossplane Authors.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use
this file except in compliance with the License. You may obtain a copy of the
License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed
under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
CONDITIONS OF ANY KIND, either express or implied. See the License for the
specific language governing permissions and limitations under the License.
*/

package function

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/test"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"

	"github.com/upbound/function-sdk-go/response"
)

// A MockFunction composes no resources. It returns a canned response, or a
// canned error.
type MockFunction struct {
	fnv1.UnimplementedFunctionRunnerServiceServer

	rsp *fnv1.RunFunctionResponse
	err error
}

func (f *MockFunction) RunFunction(_ context.Context, _ *fnv1.RunFunctionRequest) (*fnv1.RunFunctionResponse, error) {
	return f.rsp, f.err
}

func TestRunFunction(t *testing.T) {
	type args struct {
		ctx context.Context
		req *fnv1.RunFunctionRequest
	}
	type want struct {
		rsp *fnv1.RunFunctionResponse
		err error
	}
	cases := map[string]struct {
		reason string
		fn     fnv1.FunctionRunnerServiceServer
		args   args
		want   want
	}{
		"ResponsePassedThrough": {
			reason: "A response from a function that didn't return an error should be passed through untouched.",
			fn: &MockFunction{
				rsp: &fnv1.RunFunctionResponse{
					Meta: &fnv1.ResponseMeta{Tag: "cool-tag", Ttl: durationpb.New(response.DefaultTTL)},
					Results: []*fnv1.Result{{
						Severity: fnv1.Severity_SEVERITY_NORMAL,
						Message:  "everything is cool",
					}},
				},
			},
			args: args{
				ctx: context.Background(),
				req: &fnv1.RunFunctionRequest{Meta: &fnv1.RequestMeta{Tag: "cool-tag"}},
			},
			want: want{
				rsp: &fnv1.RunFunctionResponse{
					Meta: &fnv1.ResponseMeta{Tag: "cool-tag", Ttl: durationpb.New(response.DefaultTTL)},
					Results: []*fnv1.Result{{
						Severity: fnv1.Severity_SEVERITY_NORMAL,
						Message:  "everything is cool",
					}},
				},
			},
		},
		"ErrorBecomesFatalResult": {
			reason: "An error returned by a function should become a response with a single fatal result, not an RPC error.",
			fn: &MockFunction{
				err: errors.New("boom"),
			},
			args: args{
				ctx: context.Background(),
				req: &fnv1.RunFunctionRequest{Meta: &fnv1.RequestMeta{Tag: "cool-tag"}},
			},
			want: want{
				rsp: &fnv1.RunFunctionResponse{
					Meta:    &fnv1.ResponseMeta{Tag: "cool-tag", Ttl: durationpb.New(response.DefaultTTL)},
					Desired: &fnv1.State{},
					Results: []*fnv1.Result{{
						Severity: fnv1.Severity_SEVERITY_FATAL,
						Message:  "boom",
					}},
				},
			},
		},
		"ErrorDiscardsPartialResponse": {
			reason: "When a function returns both a response and an error the response should be discarded in favor of a fresh one seeded from the request.",
			fn: &MockFunction{
				rsp: &fnv1.RunFunctionResponse{
					Results: []*fnv1.Result{{
						Severity: fnv1.Severity_SEVERITY_NORMAL,
						Message:  "partial work",
					}},
				},
				err: errors.New("boom"),
			},
			args: args{
				ctx: context.Background(),
				req: &fnv1.RunFunctionRequest{
					Desired: &fnv1.State{
						Resources: map[string]*fnv1.Resource{
							"cool-bucket": {},
						},
					},
				},
			},
			want: want{
				rsp: &fnv1.RunFunctionResponse{
					Meta: &fnv1.ResponseMeta{Ttl: durationpb.New(response.DefaultTTL)},
					Desired: &fnv1.State{
						Resources: map[string]*fnv1.Resource{
							"cool-bucket": {},
						},
					},
					Results: []*fnv1.Result{{
						Severity: fnv1.Severity_SEVERITY_FATAL,
						Message:  "boom",
					}},
				},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewRunner(tc.fn)

			rsp, err := r.RunFunction(tc.args.ctx, tc.args.req)

			if diff := cmp.Diff(tc.want.rsp, rsp, protocmp.Transform()); diff != "" {
				t.Errorf("\n%s\nRunFunction(...): -want, +got:\n%s", tc.reason, diff)
			}
			if diff := cmp.Diff(tc.want.err, err, test.EquateErrors()); diff != "" {
				t.Errorf("\n%s\nRunFunction(...): -want error, +got error:\n%s", tc.reason, diff)
			}
		})
	}
}
