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

// UnknownStruct is what Deserialize produces for a namespaced struct
// whose (namespace, name) has no local registration and
// DeserializeUnexistentClass is enabled: Payload holds its raw,
// still-encoded body bytes as written, rather than discarding them. This
// package does not serialize an UnknownStruct back to the wire and has
// no call that decodes its Payload.
type UnknownStruct struct {
	Namespace string
	Name      string
	Kind      int32
	Payload   []byte
}
