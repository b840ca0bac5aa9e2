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

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"

	"github.com/upbound/function-sdk-go/response"
)

// A Runner wraps a composition function, converting any error it returns into
// a response with a single fatal result. Crossplane interprets a fatal result
// as a failure of the whole pipeline run, while still receiving a structurally
// valid response - the RPC itself never fails due to function logic.
type Runner struct {
	fnv1.UnimplementedFunctionRunnerServiceServer

	wrapped fnv1.FunctionRunnerServiceServer
	log     logging.Logger
}

// A RunnerOption configures a Runner.
type RunnerOption func(r *Runner)

// WithRunnerLogger specifies which logger the Runner should use.
func WithRunnerLogger(log logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// NewRunner returns a Runner that runs the supplied function.
func NewRunner(fn fnv1.FunctionRunnerServiceServer, o ...RunnerOption) *Runner {
	r := &Runner{wrapped: fn, log: logging.NewNopLogger()}
	for _, opt := range o {
		opt(r)
	}
	return r
}

// RunFunction runs the wrapped function. If the function returns an error the
// Runner discards its response, bootstraps a new one from the request, and
// records the error as a fatal result on it. The error isn't returned to the
// gRPC transport.
func (r *Runner) RunFunction(ctx context.Context, req *fnv1.RunFunctionRequest) (*fnv1.RunFunctionResponse, error) {
	rsp, err := r.wrapped.RunFunction(ctx, req)
	if err == nil {
		return rsp, nil
	}

	r.log.Debug("Function returned an error - converting it to a fatal result", "error", err)

	rsp = response.To(req, response.DefaultTTL)
	response.Fatal(rsp, err)
	return rsp, nil
}
