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

// Package resource contains utilities for working with the resources a
// composition function receives and returns, including converting them to and
// from the protocol buffer Struct well-known type.
package resource

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	kunstructured "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/resource/unstructured"
	"github.com/crossplane/crossplane-runtime/pkg/resource/unstructured/composed"
	"github.com/crossplane/crossplane-runtime/pkg/resource/unstructured/composite"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"
)

// Error strings.
const (
	errStructFromUnstructured = "cannot create Struct from unstructured object"
	errMarshalJSON            = "cannot marshal object to JSON"
	errUnmarshalJSON          = "cannot unmarshal JSON into object"
	errMarshalStruct          = "cannot marshal Struct to JSON"
)

// A Name uniquely identifies a composed resource within a composition.
type Name string

// ConnectionDetails of a composite or composed resource - e.g. usernames,
// passwords, endpoints, etc.
type ConnectionDetails map[string][]byte

// Ready indicates whether a composed resource should be considered ready.
type Ready string

// Composed resource readiness.
const (
	// ReadyUnspecified means the function doesn't have an opinion on whether
	// the resource is ready. Crossplane will fall back to its own readiness
	// detection.
	ReadyUnspecified Ready = ""

	// ReadyTrue means the resource is ready.
	ReadyTrue Ready = "True"

	// ReadyFalse means the resource is not ready.
	ReadyFalse Ready = "False"
)

// ReadyFromProto returns the equivalent Ready value for a protocol buffer
// readiness enum.
func ReadyFromProto(r fnv1.Ready) Ready {
	switch r {
	case fnv1.Ready_READY_TRUE:
		return ReadyTrue
	case fnv1.Ready_READY_FALSE:
		return ReadyFalse
	case fnv1.Ready_READY_UNSPECIFIED:
		return ReadyUnspecified
	}
	return ReadyUnspecified
}

// Proto returns the equivalent protocol buffer readiness enum.
func (r Ready) Proto() fnv1.Ready {
	switch r {
	case ReadyTrue:
		return fnv1.Ready_READY_TRUE
	case ReadyFalse:
		return fnv1.Ready_READY_FALSE
	case ReadyUnspecified:
		return fnv1.Ready_READY_UNSPECIFIED
	}
	return fnv1.Ready_READY_UNSPECIFIED
}

// A Composite resource (XR) - the resource the function is composing other
// resources on behalf of.
type Composite struct {
	// The Resource's manifest.
	Resource *composite.Unstructured

	// The Resource's connection details.
	ConnectionDetails ConnectionDetails

	// Ready indicates whether this desired composite resource should be
	// considered ready. Only meaningful on the desired XR.
	Ready Ready
}

// An ObservedComposed resource - a composed resource as it currently exists in
// the cluster.
type ObservedComposed struct {
	// The Resource's manifest.
	Resource *composed.Unstructured

	// The Resource's connection details.
	ConnectionDetails ConnectionDetails
}

// A DesiredComposed resource - a composed resource the function wants to
// exist.
type DesiredComposed struct {
	// The Resource's manifest.
	Resource *composed.Unstructured

	// Ready indicates whether this composed resource should be considered
	// ready.
	Ready Ready
}

// NewDesiredComposed returns a new, empty desired composed resource. Callers
// may set fields on its Resource immediately.
func NewDesiredComposed() *DesiredComposed {
	return &DesiredComposed{Resource: composed.New()}
}

// An Extra resource fetched by Crossplane on the function's behalf.
type Extra struct {
	// The Resource's manifest.
	Resource *kunstructured.Unstructured
}

// A CredentialsType indicates the type of a credential.
type CredentialsType string

// CredentialsTypeData is a credential that consists of a map of data, similar
// to a Kubernetes Secret.
const CredentialsTypeData CredentialsType = "data"

// Credentials supplied to the function.
type Credentials struct {
	// Type of the credentials.
	Type CredentialsType

	// Data of the credentials.
	Data map[string][]byte
}

// AsStruct converts the supplied object to a protocol buffer Struct well-known
// type.
func AsStruct(o runtime.Object) (*structpb.Struct, error) {
	// If the supplied object is *Unstructured we don't need to round-trip.
	if u, ok := o.(*kunstructured.Unstructured); ok {
		s, err := structpb.NewStruct(u.Object)
		return s, errors.Wrap(err, errStructFromUnstructured)
	}

	// If the supplied object wraps *Unstructured we don't need to round-trip.
	if w, ok := o.(unstructured.Wrapper); ok {
		s, err := structpb.NewStruct(w.GetUnstructured().Object)
		return s, errors.Wrap(err, errStructFromUnstructured)
	}

	// Fall back to a JSON round-trip.
	b, err := json.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, errMarshalJSON)
	}

	s := &structpb.Struct{}
	return s, errors.Wrap(s.UnmarshalJSON(b), errUnmarshalJSON)
}

// AsObject populates the supplied object with content loaded from the Struct.
// A nil Struct is treated as an empty one.
func AsObject(s *structpb.Struct, o runtime.Object) error {
	if s == nil {
		s = &structpb.Struct{}
	}

	// If the supplied object is *Unstructured we don't need to round-trip.
	if u, ok := o.(*kunstructured.Unstructured); ok {
		u.Object = s.AsMap()
		return nil
	}

	// If the supplied object wraps *Unstructured we don't need to round-trip.
	if w, ok := o.(unstructured.Wrapper); ok {
		w.GetUnstructured().Object = s.AsMap()
		return nil
	}

	// Fall back to a JSON round-trip.
	b, err := protojson.Marshal(s)
	if err != nil {
		return errors.Wrap(err, errMarshalStruct)
	}

	return errors.Wrap(json.Unmarshal(b, o), errUnmarshalJSON)
}

// MustStructObject is intended only for use in tests. It returns the supplied
// object as a struct. It panics if it can't.
func MustStructObject(o runtime.Object) *structpb.Struct {
	s, err := AsStruct(o)
	if err != nil {
		panic(err)
	}
	return s
}

// MustStructJSON is intended only for use in tests. It returns the supplied
// JSON string as a struct. It panics if it can't.
func MustStructJSON(j string) *structpb.Struct {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal([]byte(j), s); err != nil {
		panic(err)
	}
	return s
}
