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
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package-wide logger, a no-op by default so a
// library consumer never gets unsolicited output on stderr.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs l as the package-wide logger, replacing the default
// no-op. Call it once during process startup before any Codec is built.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}

func logRegistration(info *ClassInfo) {
	Logger().Debug("type registered",
		zap.String("type", info.Type.String()),
		zap.Int32("kind", info.Kind),
		zap.Int32("typeId", int32(info.TypeId)),
		zap.String("namespace", info.Namespace),
		zap.String("name", info.Name),
	)
}
