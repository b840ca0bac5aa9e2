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

// Package request contains utilities for reading RunFunctionRequests.
package request

import (
	"google.golang.org/protobuf/types/known/structpb"
	kunstructured "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/resource/unstructured/composed"
	"github.com/crossplane/crossplane-runtime/pkg/resource/unstructured/composite"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"

	"github.com/upbound/function-sdk-go/resource"
)

// Error strings.
const (
	errGetInput = "cannot get function input"

	errFmtXRAsObject          = "cannot convert %s composite resource from protobuf Struct"
	errFmtComposedAsObject    = "cannot convert %s composed resource %q from protobuf Struct"
	errFmtRequiredAsObject    = "cannot convert required resource %q from protobuf Struct"
	errFmtCredentialsNotFound = "%s: credentials not found"
	errFmtCredentialsNoSource = "credentials %q have no supported source"
)

// GetInput loads the opaque input supplied to the function into the supplied
// object. An absent input is treated as empty.
func GetInput(req *fnv1.RunFunctionRequest, into runtime.Object) error {
	return errors.Wrap(resource.AsObject(req.GetInput(), into), errGetInput)
}

// GetContextKey looks up the supplied key in the request's context. It returns
// the value and true if the key is present - even if its value is null - and
// nil and false otherwise.
func GetContextKey(req *fnv1.RunFunctionRequest, key string) (*structpb.Value, bool) {
	f := req.GetContext().GetFields()
	if f == nil {
		return nil, false
	}
	v, ok := f[key]
	return v, ok
}

// GetObservedCompositeResource from the supplied request. If the request has
// no observed composite resource an empty one is returned, never nil.
func GetObservedCompositeResource(req *fnv1.RunFunctionRequest) (*resource.Composite, error) {
	xr := &resource.Composite{
		Resource:          composite.New(),
		ConnectionDetails: req.GetObserved().GetComposite().GetConnectionDetails(),
	}
	err := resource.AsObject(req.GetObserved().GetComposite().GetResource(), xr.Resource)
	return xr, errors.Wrapf(err, errFmtXRAsObject, "observed")
}

// GetDesiredCompositeResource from the supplied request. If no prior pipeline
// step desired a composite resource an empty one is returned, never nil.
func GetDesiredCompositeResource(req *fnv1.RunFunctionRequest) (*resource.Composite, error) {
	xr := &resource.Composite{
		Resource:          composite.New(),
		ConnectionDetails: req.GetDesired().GetComposite().GetConnectionDetails(),
		Ready:             resource.ReadyFromProto(req.GetDesired().GetComposite().GetReady()),
	}
	err := resource.AsObject(req.GetDesired().GetComposite().GetResource(), xr.Resource)
	return xr, errors.Wrapf(err, errFmtXRAsObject, "desired")
}

// GetObservedComposedResources from the supplied request. If the request has
// no observed composed resources an empty map is returned, never nil.
func GetObservedComposedResources(req *fnv1.RunFunctionRequest) (map[resource.Name]resource.ObservedComposed, error) {
	ocds := map[resource.Name]resource.ObservedComposed{}
	for name, r := range req.GetObserved().GetResources() {
		ocd := resource.ObservedComposed{
			Resource:          composed.New(),
			ConnectionDetails: r.GetConnectionDetails(),
		}
		if err := resource.AsObject(r.GetResource(), ocd.Resource); err != nil {
			return nil, errors.Wrapf(err, errFmtComposedAsObject, "observed", name)
		}
		ocds[resource.Name(name)] = ocd
	}
	return ocds, nil
}

// GetDesiredComposedResources from the supplied request. If no prior pipeline
// step desired any composed resources an empty map is returned, never nil.
func GetDesiredComposedResources(req *fnv1.RunFunctionRequest) (map[resource.Name]*resource.DesiredComposed, error) {
	dcds := map[resource.Name]*resource.DesiredComposed{}
	for name, r := range req.GetDesired().GetResources() {
		dcd := &resource.DesiredComposed{
			Resource: composed.New(),
			Ready:    resource.ReadyFromProto(r.GetReady()),
		}
		if err := resource.AsObject(r.GetResource(), dcd.Resource); err != nil {
			return nil, errors.Wrapf(err, errFmtComposedAsObject, "desired", name)
		}
		dcds[resource.Name(name)] = dcd
	}
	return dcds, nil
}

// GetRequiredResources from the supplied request - the resources Crossplane
// fetched on the function's behalf. If none were fetched an empty map is
// returned, never nil.
func GetRequiredResources(req *fnv1.RunFunctionRequest) (map[string][]resource.Extra, error) {
	out := map[string][]resource.Extra{}
	for name, rs := range req.GetExtraResources() {
		extras := make([]resource.Extra, 0, len(rs.GetItems()))
		for _, r := range rs.GetItems() {
			u := &kunstructured.Unstructured{}
			if err := resource.AsObject(r.GetResource(), u); err != nil {
				return nil, errors.Wrapf(err, errFmtRequiredAsObject, name)
			}
			extras = append(extras, resource.Extra{Resource: u})
		}
		out[name] = extras
	}
	return out, nil
}

// GetCredentials from the supplied request. Unlike the other accessors this
// one fails if the named credentials don't exist - a function that needs
// credentials shouldn't silently proceed without them.
func GetCredentials(req *fnv1.RunFunctionRequest, name string) (resource.Credentials, error) {
	c, ok := req.GetCredentials()[name]
	if !ok {
		return resource.Credentials{}, errors.Errorf(errFmtCredentialsNotFound, name)
	}

	if c.GetCredentialData() == nil {
		return resource.Credentials{}, errors.Errorf(errFmtCredentialsNoSource, name)
	}

	return resource.Credentials{
		Type: resource.CredentialsTypeData,
		Data: c.GetCredentialData().GetData(),
	}, nil
}
