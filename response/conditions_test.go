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

package response

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/testing/protocmp"
	"k8s.io/utils/ptr"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"
)

func TestConditions(t *testing.T) {
	cases := map[string]struct {
		reason string
		build  func() *fnv1.RunFunctionResponse
		want   *fnv1.RunFunctionResponse
	}{
		"True": {
			reason: "A true condition should target only the composite by default.",
			build: func() *fnv1.RunFunctionResponse {
				rsp := &fnv1.RunFunctionResponse{}
				ConditionTrue(rsp, "DatabaseReady", "Available")
				return rsp
			},
			want: &fnv1.RunFunctionResponse{
				Conditions: []*fnv1.Condition{{
					Type:   "DatabaseReady",
					Status: fnv1.Status_STATUS_CONDITION_TRUE,
					Reason: "Available",
					Target: fnv1.Target_TARGET_COMPOSITE.Enum(),
				}},
			},
		},
		"FalseWithMessage": {
			reason: "A message added via the fluent option should land on the condition.",
			build: func() *fnv1.RunFunctionResponse {
				rsp := &fnv1.RunFunctionResponse{}
				ConditionFalse(rsp, "DatabaseReady", "Creating").WithMessage("waiting for the database to come up")
				return rsp
			},
			want: &fnv1.RunFunctionResponse{
				Conditions: []*fnv1.Condition{{
					Type:    "DatabaseReady",
					Status:  fnv1.Status_STATUS_CONDITION_FALSE,
					Reason:  "Creating",
					Message: ptr.To("waiting for the database to come up"),
					Target:  fnv1.Target_TARGET_COMPOSITE.Enum(),
				}},
			},
		},
		"UnknownTargetingClaim": {
			reason: "TargetCompositeAndClaim should widen the condition's target.",
			build: func() *fnv1.RunFunctionResponse {
				rsp := &fnv1.RunFunctionResponse{}
				ConditionUnknown(rsp, "DatabaseReady", "Unexpected").
					WithMessagef("cannot determine state of database %q", "cool-db").
					TargetCompositeAndClaim()
				return rsp
			},
			want: &fnv1.RunFunctionResponse{
				Conditions: []*fnv1.Condition{{
					Type:    "DatabaseReady",
					Status:  fnv1.Status_STATUS_CONDITION_UNKNOWN,
					Reason:  "Unexpected",
					Message: ptr.To(`cannot determine state of database "cool-db"`),
					Target:  fnv1.Target_TARGET_COMPOSITE_AND_CLAIM.Enum(),
				}},
			},
		},
		"Appended": {
			reason: "Conditions should accumulate in the order they were added.",
			build: func() *fnv1.RunFunctionResponse {
				rsp := &fnv1.RunFunctionResponse{}
				ConditionTrue(rsp, "DatabaseReady", "Available")
				ConditionFalse(rsp, "CacheReady", "Creating")
				return rsp
			},
			want: &fnv1.RunFunctionResponse{
				Conditions: []*fnv1.Condition{
					{
						Type:   "DatabaseReady",
						Status: fnv1.Status_STATUS_CONDITION_TRUE,
						Reason: "Available",
						Target: fnv1.Target_TARGET_COMPOSITE.Enum(),
					},
					{
						Type:   "CacheReady",
						Status: fnv1.Status_STATUS_CONDITION_FALSE,
						Reason: "Creating",
						Target: fnv1.Target_TARGET_COMPOSITE.Enum(),
					},
				},
			},
		},
		"NilResponse": {
			reason: "Setting a condition on a nil response should be a harmless no-op, not a panic.",
			build: func() *fnv1.RunFunctionResponse {
				ConditionTrue(nil, "DatabaseReady", "Available").WithMessage("into the void")
				return nil
			},
			want: nil,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rsp := tc.build()

			if diff := cmp.Diff(tc.want, rsp, protocmp.Transform()); diff != "" {
				t.Errorf("\n%s\n-want, +got:\n%s", tc.reason, diff)
			}
		})
	}
}
