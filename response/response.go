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

// Package response contains utilities for building RunFunctionResponses.
package response

import (
	"fmt"
	"time"

	"dario.cat/mergo"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"

	"github.com/upbound/function-sdk-go/resource"
)

// DefaultTTL is the length of time Crossplane may cache a response for, if the
// function didn't specify one.
const DefaultTTL = 1 * time.Minute

// Error strings.
const (
	errMergeResources = "cannot merge desired resources"
	errMergeStatus    = "cannot merge desired composite status"
	errStructFromMap  = "cannot create protobuf Struct"
	errXRAsStruct     = "cannot convert composite resource to protobuf Struct"
	errOutputAsStruct = "cannot convert output to protobuf Struct"

	errFmtComposedAsStruct = "cannot convert composed resource %q to protobuf Struct"
)

// To bootstraps a response to the supplied request. The response's desired
// state is seeded from the request's, its tag matches the request's, and
// Crossplane may cache it for the supplied duration. Mutate the returned
// response using the other functions in this package. The response shares
// state with the request - don't read the request's desired state or context
// after mutating the response's.
func To(req *fnv1.RunFunctionRequest, ttl time.Duration) *fnv1.RunFunctionResponse {
	d := req.GetDesired()
	if d == nil {
		d = &fnv1.State{}
	}

	// A prior pipeline step may have created the composite entry without
	// setting its manifest. Materialize an empty manifest so it's always safe
	// to merge into.
	if d.GetComposite() != nil && d.GetComposite().GetResource() == nil {
		d.Composite.Resource = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	return &fnv1.RunFunctionResponse{
		Meta: &fnv1.ResponseMeta{
			Tag: req.GetMeta().GetTag(),
			Ttl: durationpb.New(ttl),
		},
		Desired: d,
		Context: req.GetContext(),
	}
}

// Normal adds a result of normal severity - i.e. purely informational - to the
// supplied response. It's a no-op if the response is nil; reporting a result
// must never interrupt the function.
func Normal(rsp *fnv1.RunFunctionResponse, message string) {
	if rsp == nil {
		return
	}
	rsp.Results = append(rsp.GetResults(), &fnv1.Result{
		Severity: fnv1.Severity_SEVERITY_NORMAL,
		Message:  message,
	})
}

// Normalf adds a result of normal severity to the supplied response, using the
// supplied format string and arguments.
func Normalf(rsp *fnv1.RunFunctionResponse, format string, a ...any) {
	Normal(rsp, fmt.Sprintf(format, a...))
}

// Warning adds a result of warning severity to the supplied response.
// Crossplane will consider the pipeline degraded but let it continue. It's a
// no-op if the response is nil.
func Warning(rsp *fnv1.RunFunctionResponse, err error) {
	if rsp == nil {
		return
	}
	rsp.Results = append(rsp.GetResults(), &fnv1.Result{
		Severity: fnv1.Severity_SEVERITY_WARNING,
		Message:  err.Error(),
	})
}

// Fatal adds a result of fatal severity to the supplied response. Crossplane
// will consider the entire pipeline run to have failed. It's a no-op if the
// response is nil.
func Fatal(rsp *fnv1.RunFunctionResponse, err error) {
	if rsp == nil {
		return
	}
	rsp.Results = append(rsp.GetResults(), &fnv1.Result{
		Severity: fnv1.Severity_SEVERITY_FATAL,
		Message:  err.Error(),
	})
}

// SetContextKey sets the supplied key of the response's context to the
// supplied value, initializing the context if no prior step set one. The
// context is passed to the next step in the pipeline.
func SetContextKey(rsp *fnv1.RunFunctionResponse, key string, v *structpb.Value) {
	if rsp.GetContext().GetFields() == nil {
		rsp.Context = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	rsp.Context.Fields[key] = v
}

// SetOutputKey sets the supplied key of the response's output to the supplied
// value, initializing the output if the function didn't set one yet. Output is
// only meaningful when the function is run as part of an operation.
func SetOutputKey(rsp *fnv1.RunFunctionResponse, key string, v *structpb.Value) {
	if rsp.GetOutput().GetFields() == nil {
		rsp.Output = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	rsp.Output.Fields[key] = v
}

// SetOutput replaces the response's output with the supplied object. Output is
// only meaningful when the function is run as part of an operation.
func SetOutput(rsp *fnv1.RunFunctionResponse, o runtime.Object) error {
	s, err := resource.AsStruct(o)
	if err != nil {
		return errors.Wrap(err, errOutputAsStruct)
	}
	rsp.Output = s
	return nil
}

// SetDesiredCompositeResource replaces the response's desired composite
// resource with the supplied one.
func SetDesiredCompositeResource(rsp *fnv1.RunFunctionResponse, xr *resource.Composite) error {
	if rsp.GetDesired() == nil {
		rsp.Desired = &fnv1.State{}
	}
	s, err := resource.AsStruct(xr.Resource)
	if err != nil {
		return errors.Wrap(err, errXRAsStruct)
	}
	rsp.Desired.Composite = &fnv1.Resource{
		Resource:          s,
		ConnectionDetails: xr.ConnectionDetails,
		Ready:             xr.Ready.Proto(),
	}
	return nil
}

// SetDesiredCompositeStatus merges the supplied status object into the status
// of the response's desired composite resource, per the merge policy described
// at MergeResources. Only the composite's status is touched; its metadata and
// spec are left as-is. The desired composite (and its manifest) is synthesized
// if no prior pipeline step desired one.
func SetDesiredCompositeStatus(rsp *fnv1.RunFunctionResponse, status map[string]any) error {
	if rsp.GetDesired() == nil {
		rsp.Desired = &fnv1.State{}
	}
	if rsp.GetDesired().GetComposite() == nil {
		rsp.Desired.Composite = &fnv1.Resource{}
	}

	xr := rsp.GetDesired().GetComposite()
	obj := map[string]any{}
	if xr.GetResource() != nil {
		obj = xr.GetResource().AsMap()
	}

	merged := map[string]any{}
	if s, ok := obj["status"].(map[string]any); ok {
		merged = s
	}
	if err := mergo.Merge(&merged, status, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return errors.Wrap(err, errMergeStatus)
	}
	obj["status"] = merged

	s, err := structpb.NewStruct(obj)
	if err != nil {
		return errors.Wrap(err, errStructFromMap)
	}
	xr.Resource = s
	return nil
}

// SetDesiredComposedResources merges the supplied desired composed resources
// into the response. Each supplied resource is merged into the resource of the
// same name desired by prior pipeline steps, per the merge policy described at
// MergeResources. Resources desired by prior steps that the supplied map
// doesn't name are preserved.
func SetDesiredComposedResources(rsp *fnv1.RunFunctionResponse, dcds map[resource.Name]*resource.DesiredComposed) error {
	if rsp.GetDesired() == nil {
		rsp.Desired = &fnv1.State{}
	}
	if rsp.GetDesired().GetResources() == nil {
		rsp.Desired.Resources = map[string]*fnv1.Resource{}
	}
	for name, dcd := range dcds {
		s, err := resource.AsStruct(dcd.Resource)
		if err != nil {
			return errors.Wrapf(err, errFmtComposedAsStruct, name)
		}

		r := &fnv1.Resource{Resource: s, Ready: dcd.Ready.Proto()}

		existing, ok := rsp.GetDesired().GetResources()[string(name)]
		if !ok {
			rsp.Desired.Resources[string(name)] = r
			continue
		}

		merged, err := MergeResources(existing, r)
		if err != nil {
			return errors.Wrapf(err, errFmtComposedAsStruct, name)
		}
		rsp.Desired.Resources[string(name)] = merged
	}
	return nil
}

// MergeResources returns a new resource built by deep merging src into dst.
// Neither input is modified. The merge policy is that of mergo with override
// and appended slices: objects merge key-wise recursively, non-empty source
// scalars overwrite destination scalars, and arrays concatenate. Note that
// concatenation means repeated merges of resources with array fields are not
// idempotent - replace such resources wholesale instead of merging them.
func MergeResources(dst, src *fnv1.Resource) (*fnv1.Resource, error) {
	obj := dst.GetResource().AsMap()
	if err := mergo.Merge(&obj, src.GetResource().AsMap(), mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return nil, errors.Wrap(err, errMergeResources)
	}
	s, err := structpb.NewStruct(obj)
	if err != nil {
		return nil, errors.Wrap(err, errStructFromMap)
	}

	merged := &fnv1.Resource{Resource: s, Ready: dst.GetReady()}
	if src.GetReady() != fnv1.Ready_READY_UNSPECIFIED {
		merged.Ready = src.GetReady()
	}

	if dst.GetConnectionDetails() != nil || src.GetConnectionDetails() != nil {
		cds := make(map[string][]byte, len(dst.GetConnectionDetails())+len(src.GetConnectionDetails()))
		for k, v := range dst.GetConnectionDetails() {
			cds[k] = v
		}
		for k, v := range src.GetConnectionDetails() {
			cds[k] = v
		}
		merged.ConnectionDetails = cds
	}

	return merged, nil
}
