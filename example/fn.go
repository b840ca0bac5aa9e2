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

package main

import (
	"context"

	kunstructured "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"

	"github.com/upbound/function-sdk-go/request"
	"github.com/upbound/function-sdk-go/resource"
	"github.com/upbound/function-sdk-go/response"
)

// A Function that composes an S3 bucket in the region named by its input.
type Function struct {
	fnv1.UnimplementedFunctionRunnerServiceServer

	log logging.Logger
}

// RunFunction runs the function.
func (f *Function) RunFunction(_ context.Context, req *fnv1.RunFunctionRequest) (*fnv1.RunFunctionResponse, error) {
	f.log.Info("Running function", "tag", req.GetMeta().GetTag())

	rsp := response.To(req, response.DefaultTTL)

	in := &kunstructured.Unstructured{}
	if err := request.GetInput(req, in); err != nil {
		response.Fatal(rsp, errors.Wrap(err, "cannot get function input"))
		return rsp, nil
	}

	region, ok, err := kunstructured.NestedString(in.Object, "region")
	if err != nil || !ok {
		response.Fatal(rsp, errors.New("input has no region"))
		return rsp, nil
	}

	desired, err := request.GetDesiredComposedResources(req)
	if err != nil {
		response.Fatal(rsp, errors.Wrap(err, "cannot get desired composed resources"))
		return rsp, nil
	}

	bucket := resource.NewDesiredComposed()
	bucket.Resource.SetAPIVersion("s3.aws.upbound.io/v1beta1")
	bucket.Resource.SetKind("Bucket")
	if err := kunstructured.SetNestedField(bucket.Resource.Object, region, "spec", "forProvider", "region"); err != nil {
		response.Fatal(rsp, errors.Wrap(err, "cannot set bucket region"))
		return rsp, nil
	}
	desired["bucket"] = bucket

	if err := response.SetDesiredComposedResources(rsp, desired); err != nil {
		response.Fatal(rsp, errors.Wrap(err, "cannot set desired composed resources"))
		return rsp, nil
	}

	response.Normalf(rsp, "composed bucket in region %q", region)
	return rsp, nil
}
