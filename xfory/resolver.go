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

import (
	"hash/fnv"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/veltrix-io/xfory/xfory/meta"
)

// ClassInfo is everything the resolver knows about one registered Go
// type: its wire identity (either a numeric TypeId or a namespace/name
// pair), the serializer that reads and writes it, and a version hash of
// its identity and kind (computed at registration; nothing in this
// package compares it).
type ClassInfo struct {
	Type        reflect.Type
	Kind        int32
	TypeId      TypeId
	Namespace   string
	Name        string
	Serializer  Serializer
	VersionHash uint32

	// Fabricated marks a placeholder ClassInfo synthesized by
	// readTypeInfo for a namespaced struct with no local registration
	// (DeserializeUnexistentClass). Serializer is nil on a fabricated
	// entry; ReadReferencable decodes its body into an UnknownStruct
	// instead of dispatching to a Serializer.
	Fabricated bool
}

// TypeInfo is the read-side counterpart returned while decoding: the same
// shape as ClassInfo, but assembled from wire bytes rather than looked up
// by Go type.
type TypeInfo = ClassInfo

func namespaced(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// typeResolver owns every Register* operation and the default bootstrap
// table of built-in kinds. It is not safe for concurrent use.
type typeResolver struct {
	compatible       bool
	fabricateUnknown bool
	shareMetaContext bool
	compressInt      bool
	longEncoding     LongEncoding
	compressString   bool
	checker          func(reflect.Type) bool

	byType   map[reflect.Type]*ClassInfo
	byTypeId map[TypeId]*ClassInfo
	byName   map[string]*ClassInfo

	strings *meta.Resolver

	nextUserId int32

	// one-slot inline cache: most call sites serialize a single
	// dominant type in a tight loop, so checking here first skips the
	// map lookup entirely in the common case.
	cacheType reflect.Type
	cacheInfo *ClassInfo
}

func newTypeResolver(cfg Config) *typeResolver {
	r := &typeResolver{
		compatible:       cfg.Compatible,
		fabricateUnknown: cfg.DeserializeUnexistentClass || !cfg.RequireClassRegistration,
		shareMetaContext: cfg.ShareMetaContext,
		compressInt:      cfg.CompressInt,
		longEncoding:     cfg.LongEncoding,
		compressString:   cfg.CompressString,
		byType:           make(map[reflect.Type]*ClassInfo),
		byTypeId:         make(map[TypeId]*ClassInfo),
		byName:           make(map[string]*ClassInfo),
		strings:          meta.NewResolver(),
		nextUserId:       firstAutoUserId,
	}
	registerBuiltins(r)
	return r
}

// SetSecurityChecker installs a predicate that Register/RegisterByNamespace
// consult before admitting a type; a checker returning false rejects the
// registration with ErrPolicyViolation.
func (r *typeResolver) SetSecurityChecker(f func(reflect.Type) bool) {
	r.checker = f
}

func elemType(t interface{}) reflect.Type {
	if rt, ok := t.(reflect.Type); ok {
		return rt
	}
	rt := reflect.TypeOf(t)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt
}

// register is the shared implementation behind Register and
// RegisterByNamespace: it validates the id/name aren't already bound to a
// different type, picks an internal kind from the serializer (or an
// existing registration), computes the version hash, and indexes the
// ClassInfo for both write and read lookup.
func (r *typeResolver) register(t reflect.Type, userId int32, namespace, name string, s Serializer) (*ClassInfo, error) {
	if r.checker != nil && !r.checker(t) {
		return nil, errors.Wrapf(ErrPolicyViolation, "type %s", t)
	}

	if existing, ok := r.byType[t]; ok {
		if s == nil && (userId == 0 || userId == UserIdOf(existing.TypeId)) {
			return existing, nil
		}
		return nil, errors.Wrapf(ErrAlreadyRegistered, "type %s", t)
	}

	var kind int32
	switch {
	case s != nil:
		kind = s.Kind()
	case name != "":
		kind = KindNsStruct
	default:
		kind = KindStruct
	}

	info := &ClassInfo{Type: t, Kind: kind, Serializer: s}

	if name != "" {
		if strings.Contains(name, ".") {
			return nil, ErrNameContainsDot
		}
		key := namespaced(namespace, name)
		if other, ok := r.byName[key]; ok && other.Type != t {
			return nil, errors.Wrapf(ErrNameConflict, "%s", key)
		}
		info.Namespace = namespace
		info.Name = name
		info.TypeId = BuildTypeId(kind, 0)
		r.byName[key] = info
	} else {
		if userId == 0 {
			// Auto-assignment must skip ids already bound to some other
			// kind's registration — a prior explicit Register(t, 64)
			// would otherwise make the very next auto Register collide
			// and fail with ErrIdReused instead of advancing past it.
			for r.nextUserId < MaxUserTypeId {
				candidate := r.nextUserId
				r.nextUserId++
				if _, taken := r.byTypeId[BuildTypeId(kind, candidate)]; !taken {
					userId = candidate
					break
				}
			}
			if userId == 0 {
				return nil, errors.Wrapf(ErrIdOverflow, "no free id below %d", MaxUserTypeId)
			}
		}
		if userId >= MaxUserTypeId {
			return nil, errors.Wrapf(ErrIdOverflow, "id %d", userId)
		}
		id := BuildTypeId(kind, userId)
		if other, ok := r.byTypeId[id]; ok && other.Type != t {
			return nil, errors.Wrapf(ErrIdReused, "id %d", userId)
		}
		info.TypeId = id
		r.byTypeId[id] = info
	}

	info.VersionHash = classVersionHash(namespace, name, kind)
	r.byType[t] = info
	logRegistration(info)
	return info, nil
}

// Register assigns t a numeric type id, auto-selected from the next free
// slot past firstAutoUserId when id is zero.
func (r *typeResolver) Register(t interface{}, id int32) error {
	_, err := r.register(elemType(t), id, "", "", nil)
	return err
}

// RegisterByNamespace assigns t a cross-language (namespace, name) wire
// identity instead of a numeric id.
func (r *typeResolver) RegisterByNamespace(t interface{}, namespace, name string) error {
	_, err := r.register(elemType(t), 0, namespace, name, nil)
	return err
}

// RegisterSerializer attaches s to a type that has already been
// registered via Register or RegisterByNamespace, replacing whatever
// default serializer the bootstrap table assigned it.
func (r *typeResolver) RegisterSerializer(t interface{}, s Serializer) error {
	rt := elemType(t)
	info, ok := r.byType[rt]
	if !ok {
		return errors.Wrapf(ErrNotRegistered, "type %s", rt)
	}
	info.Serializer = s
	info.Kind = s.Kind()
	return nil
}

// getClassInfo looks up the registration for a concrete Go type,
// consulting the one-slot cache first.
func (r *typeResolver) getClassInfo(t reflect.Type) (*ClassInfo, error) {
	if t == r.cacheType && r.cacheInfo != nil {
		return r.cacheInfo, nil
	}
	if info, ok := r.byType[t]; ok {
		r.cacheType, r.cacheInfo = t, info
		return info, nil
	}
	if info, ok := r.fallbackContainerInfo(t); ok {
		return info, nil
	}
	return nil, errors.Wrapf(ErrUnregisteredType, "type %s", t)
}

// fallbackContainerInfo synthesizes a ClassInfo for an unregistered
// slice, array, or map so ad hoc container types still serialize without
// an explicit Register call, matching every language's expectation that
// "a list of strings" needs no ceremony to send across the wire. Its
// TypeId is the container kind with user id zero. A read into an
// interface slot resolves that TypeId to the first Go type of the kind
// this resolver synthesized or registered.
func (r *typeResolver) fallbackContainerInfo(t reflect.Type) (*ClassInfo, bool) {
	var s Serializer
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			s = binarySerializer{}
		} else {
			s = listSerializer{elem: t.Elem()}
		}
	case reflect.Map:
		if isSetShaped(t) {
			s = setSerializer{elem: t.Key()}
		} else {
			s = mapSerializer{keyType: t.Key(), valType: t.Elem()}
		}
	default:
		return nil, false
	}
	info := &ClassInfo{Type: t, Kind: s.Kind(), TypeId: BuildTypeId(s.Kind(), 0), Serializer: s}
	r.byType[t] = info
	if _, taken := r.byTypeId[info.TypeId]; !taken {
		r.byTypeId[info.TypeId] = info
	}
	return info, true
}

// writeTypeInfo writes a ClassInfo's wire identity: the TypeId always,
// plus namespace and name tokens (through the meta-string resolver) when
// the kind is namespaced.
func (r *typeResolver) writeTypeInfo(buf *ByteBuffer, info *ClassInfo) {
	buf.WriteVarUint32(uint32(info.TypeId))
	if IsNamespacedType(info.Kind) {
		r.strings.WriteString(buf, info.Namespace)
		r.strings.WriteString(buf, info.Name)
	}
}

// readTypeInfo is the inverse of writeTypeInfo, resolving the decoded
// identity back to a registered ClassInfo.
func (r *typeResolver) readTypeInfo(buf *ByteBuffer) (*TypeInfo, error) {
	id := TypeId(buf.ReadVarUint32())
	kind := KindOf(id)

	if IsNamespacedType(kind) {
		namespace, err := r.strings.ReadString(buf)
		if err != nil {
			return nil, err
		}
		name, err := r.strings.ReadString(buf)
		if err != nil {
			return nil, err
		}
		info, ok := r.byName[namespaced(namespace, name)]
		if ok {
			return info, nil
		}
		if !IsSkippableNamespacedKind(kind) {
			// An ext serializer's body is free-form, not self-delimiting,
			// so an unregistered one can never be safely skipped.
			return nil, errors.Wrapf(ErrUnregisteredSerializer, "%s", namespaced(namespace, name))
		}
		if !r.fabricateUnknown {
			return nil, errors.Wrapf(ErrUnregisteredType, "%s", namespaced(namespace, name))
		}
		return &ClassInfo{
			Kind:       kind,
			Namespace:  namespace,
			Name:       name,
			Fabricated: true,
		}, nil
	}

	if info, ok := r.byTypeId[id]; ok {
		return info, nil
	}
	return nil, errors.Wrapf(ErrUnregisteredType, "type id %d", id)
}

// resetWrite/resetRead clear the interned meta-string table between
// messages, unless shareMetaContext asks a long-lived Codec to keep
// reusing namespace/name back-references across multiple messages.
func (r *typeResolver) resetWrite() {
	if !r.shareMetaContext {
		r.strings.Reset()
	}
}

func (r *typeResolver) resetRead() {
	if !r.shareMetaContext {
		r.strings.Reset()
	}
}

// classVersionHash summarizes a registration's wire-visible shape for
// compatible_mode's SCHEMA_CONSISTENT check: two endpoints that disagree
// on this hash for the same (namespace, name) are running incompatible
// definitions. Field-level hashing (as the original per-struct
// implementation does) is out of scope here since this package does not
// implement struct field reflection; the hash instead covers the
// identity and kind, which is what this package actually controls, and a
// caller-supplied Serializer is expected to fold its own shape into a
// wrapping namespace/name choice if finer-grained drift detection matters.
func classVersionHash(namespace, name string, kind int32) uint32 {
	h := fnv.New32a()
	h.Write([]byte(namespaced(namespace, name)))
	h.Write([]byte{byte(kind)})
	return h.Sum32()
}
