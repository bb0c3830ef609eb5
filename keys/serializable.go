// Copyright 2025 The keyring-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keys defines the typed key material managed by this library:
// symmetric keys, asymmetric keys, key parameters, and the identifiers and
// serialization scaffolding shared by all of them.
//
// Every persisted entity starts with the same header: a type tag naming the
// concrete kind, a 32-byte id, and optional name and description strings.
// Bodies follow in the fixed big-endian layout of the entity.
package keys

import (
	"fmt"

	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

// Serializable is implemented by every persisted entity.
type Serializable interface {
	// TypeTag returns the string identifying the concrete kind.
	TypeTag() string
	// ID returns the stable identifier.
	ID() ID
	// Name returns the optional human-readable name.
	Name() string
	// Description returns the optional description.
	Description() string
	// SerializedSize returns the full encoded size, header included.
	SerializedSize() int
	// Serialize writes the header and body to enc.
	Serialize(enc *serialization.Encoder)
}

// Metadata carries the header fields common to all serializables. Concrete
// types embed it.
type Metadata struct {
	id          ID
	name        string
	description string
}

// NewMetadata builds a Metadata with the given id.
func NewMetadata(id ID, name, description string) Metadata {
	return Metadata{id: id, name: name, description: description}
}

// ID returns the stable identifier.
func (m Metadata) ID() ID { return m.id }

// Name returns the optional name.
func (m Metadata) Name() string { return m.name }

// Description returns the optional description.
func (m Metadata) Description() string { return m.description }

// HeaderSize returns the encoded size of the common header under the given
// type tag.
func (m Metadata) HeaderSize(typeTag string) int {
	return serialization.StringSize(typeTag) +
		IDSize +
		serialization.StringSize(m.name) +
		serialization.StringSize(m.description)
}

// WriteHeader writes the common header: type tag, id, name, description.
func (m Metadata) WriteHeader(enc *serialization.Encoder, typeTag string) {
	enc.WriteString(typeTag)
	enc.WriteRaw(m.id[:])
	enc.WriteString(m.name)
	enc.WriteString(m.description)
}

// ReadMetadata reads the header fields following an already-consumed type
// tag.
func ReadMetadata(dec *serialization.Decoder) Metadata {
	var m Metadata
	copy(m.id[:], dec.ReadRaw(IDSize))
	m.name = dec.ReadString()
	m.description = dec.ReadString()
	return m
}

// bodyReader decodes an entity body. The header has already been consumed.
type bodyReader func(m Metadata, dec *serialization.Decoder) (Serializable, error)

var registry = map[string]bodyReader{}

// register binds a type tag to its body reader. Called from package init
// functions; duplicate registration is a programming error.
func register(typeTag string, reader bodyReader) {
	if _, ok := registry[typeTag]; ok {
		panic(fmt.Sprintf("keys: duplicate serializable type %q", typeTag))
	}
	registry[typeTag] = reader
}

// Deserialize reads the next serializable entity, dispatching on its type
// tag.
func Deserialize(dec *serialization.Decoder) (Serializable, error) {
	typeTag := dec.ReadString()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	reader, ok := registry[typeTag]
	if !ok {
		return nil, fmt.Errorf("keys: unknown serializable type %q", typeTag)
	}
	m := ReadMetadata(dec)
	if err := dec.Err(); err != nil {
		return nil, err
	}
	return reader(m, dec)
}
