// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package xfory

import "github.com/cockroachdb/errors"

// Sentinel errors for the taxonomy in the wire-format spec. Each is
// returned to the caller synchronously; none substitute for the
// informational logging described alongside them — see log.go.
var (
	// ErrTruncatedInput is raised when the stream ends before a read's
	// demand is satisfied.
	ErrTruncatedInput = errors.New("xfory: truncated input")

	// ErrMalformed is raised when a tag, length, or encoding byte
	// violates an invariant (unknown encoding tag, VarUint overflow, an
	// NS-kind id read without namespace/name bytes, ...).
	ErrMalformed = errors.New("xfory: malformed input")

	// ErrUnregisteredType is raised when a decoded type id or qualified
	// name has no registration and fabrication is disabled.
	ErrUnregisteredType = errors.New("xfory: unregistered type")

	// ErrUnregisteredSerializer is raised for an EXT kind with no
	// registered serializer; its payload is opaque so it cannot be
	// skipped like an unregistered struct can.
	ErrUnregisteredSerializer = errors.New("xfory: unregistered serializer")

	// ErrIdOverflow is raised when a user type id is >= MaxUserTypeId.
	ErrIdOverflow = errors.New("xfory: type id overflow")

	// ErrIdReused is raised when Register(type, id) is given an id
	// already bound to a different type.
	ErrIdReused = errors.New("xfory: type id already registered")

	// ErrAlreadyRegistered is raised when a type is registered twice
	// with conflicting ids.
	ErrAlreadyRegistered = errors.New("xfory: type already registered")

	// ErrNameConflict is raised when two distinct native types are
	// registered under the same (namespace, name) pair.
	ErrNameConflict = errors.New("xfory: namespace/name already registered to a different type")

	// ErrNameContainsDot is raised when RegisterByNamespace's name
	// argument contains the namespace separator.
	ErrNameContainsDot = errors.New("xfory: type name must not contain '.'")

	// ErrCircularWithoutTracking is raised when the writer detects
	// recursion while reference tracking is disabled.
	ErrCircularWithoutTracking = errors.New("xfory: circular reference with reference tracking disabled")

	// ErrNotRegistered is raised by RegisterSerializer when the target
	// type has no prior registration to attach to.
	ErrNotRegistered = errors.New("xfory: type not registered")

	// ErrPolicyViolation is raised when a class is rejected by an
	// installed security checker.
	ErrPolicyViolation = errors.New("xfory: class rejected by security policy")

	// ErrMagicNumber is raised when a message's header does not start
	// with the expected 16-bit magic number.
	ErrMagicNumber = errors.New("xfory: invalid magic number")

	// ErrNoSerializer names the missing-serializer condition. No code
	// path in this package returns it: an unregistered Go type fails
	// with ErrUnregisteredType instead.
	ErrNoSerializer = errors.New("xfory: no serializer registered for type")
)
