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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"
)

func TestServe(t *testing.T) {
	cases := map[string]struct {
		reason string
		fn     fnv1.FunctionRunnerServiceServer
		o      []ServeOption
		want   error
	}{
		"InvalidAddress": {
			reason: "We should return an error when we can't listen on the supplied address.",
			fn:     &MockFunction{},
			o: []ServeOption{
				Listen("tcp", "not-a-valid-address"),
				Insecure(true),
			},
			want: cmpopts.AnyError,
		},
		"MissingCertificates": {
			reason: "We should return an error when the mTLS certificate directory doesn't contain certificates.",
			fn:     &MockFunction{},
			o: []ServeOption{
				Listen("tcp", "127.0.0.1:0"),
				MTLSCertificates(t.TempDir()),
			},
			want: cmpopts.AnyError,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Serve(tc.fn, tc.o...)

			if diff := cmp.Diff(tc.want, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("\n%s\nServe(...): -want error, +got error:\n%s", tc.reason, diff)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		log, err := NewLogger(debug)
		if err != nil {
			t.Errorf("NewLogger(%t): unexpected error: %v", debug, err)
		}
		if log == nil {
			t.Errorf("NewLogger(%t): returned a nil logger", debug)
		}
	}
}
