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
	"fmt"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"
)

// A ConditionOption allows further configuration of a condition after it has
// been added to a response.
type ConditionOption struct {
	condition *fnv1.Condition
}

// ConditionTrue adds a condition with the supplied type and reason, and status
// true, to the supplied response. Crossplane sets the condition on the
// composite resource.
func ConditionTrue(rsp *fnv1.RunFunctionResponse, typ, reason string) *ConditionOption {
	return newCondition(rsp, typ, reason, fnv1.Status_STATUS_CONDITION_TRUE)
}

// ConditionFalse adds a condition with the supplied type and reason, and
// status false, to the supplied response.
func ConditionFalse(rsp *fnv1.RunFunctionResponse, typ, reason string) *ConditionOption {
	return newCondition(rsp, typ, reason, fnv1.Status_STATUS_CONDITION_FALSE)
}

// ConditionUnknown adds a condition with the supplied type and reason, and
// status unknown, to the supplied response.
func ConditionUnknown(rsp *fnv1.RunFunctionResponse, typ, reason string) *ConditionOption {
	return newCondition(rsp, typ, reason, fnv1.Status_STATUS_CONDITION_UNKNOWN)
}

func newCondition(rsp *fnv1.RunFunctionResponse, typ, reason string, s fnv1.Status) *ConditionOption {
	c := &fnv1.Condition{
		Type:   typ,
		Reason: reason,
		Status: s,
		Target: fnv1.Target_TARGET_COMPOSITE.Enum(),
	}
	if rsp != nil {
		rsp.Conditions = append(rsp.GetConditions(), c)
	}
	return &ConditionOption{condition: c}
}

// TargetCompositeAndClaim ensures the condition is set on the claim in
// addition to the composite resource.
func (c *ConditionOption) TargetCompositeAndClaim() *ConditionOption {
	c.condition.Target = fnv1.Target_TARGET_COMPOSITE_AND_CLAIM.Enum()
	return c
}

// WithMessage adds the supplied message to the condition.
func (c *ConditionOption) WithMessage(message string) *ConditionOption {
	c.condition.Message = &message
	return c
}

// WithMessagef adds a message built from the supplied format string and
// arguments to the condition.
func (c *ConditionOption) WithMessagef(format string, a ...any) *ConditionOption {
	return c.WithMessage(fmt.Sprintf(format, a...))
}
