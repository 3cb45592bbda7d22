// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AddressRefMarker prefixes a template string that names another contract whose address is substituted
	AddressRefMarker = "__"
	// CodeIDRefMarker prefixes a template string that names a contract whose code id is substituted.
	// It is valid in unquoted YAML, unlike '#' which starts a comment.
	CodeIDRefMarker = "$$"
)

type TemplateKind int

const (
	TemplateLiteral TemplateKind = iota
	TemplateAddressRef
	TemplateCodeIDRef
	TemplateObject
	TemplateList
)

// Template is a constructor message tree. Leaves are either literal values or
// references to other contracts, resolved only when the message is sent.
type Template struct {
	Kind   TemplateKind
	Value  interface{}
	Ref    string
	Fields map[string]*Template
	Items  []*Template
}

func Literal(v interface{}) *Template {
	return &Template{Kind: TemplateLiteral, Value: v}
}

func AddressRef(contract string) *Template {
	return &Template{Kind: TemplateAddressRef, Ref: contract}
}

func CodeIDRef(contract string) *Template {
	return &Template{Kind: TemplateCodeIDRef, Ref: contract}
}

func Object(fields map[string]*Template) *Template {
	if fields == nil {
		fields = map[string]*Template{}
	}
	return &Template{Kind: TemplateObject, Fields: fields}
}

func List(items ...*Template) *Template {
	return &Template{Kind: TemplateList, Items: items}
}

// ParseTemplate converts a decoded JSON/YAML value into a Template, turning
// marker-prefixed strings into references.
func ParseTemplate(v interface{}) (*Template, error) {
	switch t := v.(type) {
	case nil:
		return Literal(nil), nil
	case string:
		switch {
		case strings.HasPrefix(t, CodeIDRefMarker):
			name := strings.TrimPrefix(t, CodeIDRefMarker)
			if name == "" {
				return nil, fmt.Errorf("empty code id reference '%s'", t)
			}
			return CodeIDRef(name), nil
		case strings.HasPrefix(t, AddressRefMarker):
			name := strings.TrimPrefix(t, AddressRefMarker)
			if name == "" {
				return nil, fmt.Errorf("empty address reference '%s'", t)
			}
			return AddressRef(name), nil
		}
		return Literal(t), nil
	case map[string]interface{}:
		fields := make(map[string]*Template, len(t))
		for k, fv := range t {
			f, err := ParseTemplate(fv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = f
		}
		return Object(fields), nil
	case map[interface{}]interface{}:
		fields := make(map[string]*Template, len(t))
		for k, fv := range t {
			key := fmt.Sprintf("%v", k)
			f, err := ParseTemplate(fv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			fields[key] = f
		}
		return Object(fields), nil
	case []interface{}:
		items := make([]*Template, len(t))
		for i, iv := range t {
			item, err := ParseTemplate(iv)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return List(items...), nil
	default:
		return Literal(t), nil
	}
}

type TemplateResolver interface {
	Address(contract string) (string, bool)
	CodeID(contract string) (uint64, bool)
}

type UnresolvedReferenceError struct {
	Kind     TemplateKind
	Contract string
	Path     string
}

func (e *UnresolvedReferenceError) Error() string {
	what := "address"
	if e.Kind == TemplateCodeIDRef {
		what = "code id"
	}
	return fmt.Sprintf("unresolved reference at '%s': contract '%s' has no %s yet (referenced contract not yet deployed)", e.Path, e.Contract, what)
}

// Resolve returns a plain value tree with every reference substituted.
func (t *Template) Resolve(r TemplateResolver) (interface{}, error) {
	return t.resolve(r, "$")
}

func (t *Template) resolve(r TemplateResolver, path string) (interface{}, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case TemplateAddressRef:
		addr, ok := r.Address(t.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Kind: t.Kind, Contract: t.Ref, Path: path}
		}
		return addr, nil
	case TemplateCodeIDRef:
		id, ok := r.CodeID(t.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Kind: t.Kind, Contract: t.Ref, Path: path}
		}
		return id, nil
	case TemplateObject:
		out := make(map[string]interface{}, len(t.Fields))
		for _, k := range t.fieldNames() {
			v, err := t.Fields[k].resolve(r, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case TemplateList:
		out := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			v, err := item.resolve(r, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return t.Value, nil
	}
}

// References returns the distinct contract names whose addresses the template needs, in a stable order.
func (t *Template) References() []string {
	return t.collect(TemplateAddressRef)
}

func (t *Template) CodeIDReferences() []string {
	return t.collect(TemplateCodeIDRef)
}

func (t *Template) collect(kind TemplateKind) []string {
	seen := map[string]bool{}
	var names []string
	var walk func(*Template)
	walk = func(n *Template) {
		if n == nil {
			return
		}
		switch n.Kind {
		case TemplateObject:
			for _, k := range n.fieldNames() {
				walk(n.Fields[k])
			}
		case TemplateList:
			for _, item := range n.Items {
				walk(item)
			}
		case kind:
			if !seen[n.Ref] {
				seen[n.Ref] = true
				names = append(names, n.Ref)
			}
		}
	}
	walk(t)
	return names
}

func (t *Template) fieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// authored returns the template in the marker form it is written in config files.
func (t *Template) authored() interface{} {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TemplateAddressRef:
		return AddressRefMarker + t.Ref
	case TemplateCodeIDRef:
		return CodeIDRefMarker + t.Ref
	case TemplateObject:
		out := make(map[string]interface{}, len(t.Fields))
		for k, f := range t.Fields {
			out[k] = f.authored()
		}
		return out
	case TemplateList:
		out := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			out[i] = item.authored()
		}
		return out
	default:
		return t.Value
	}
}

func (t *Template) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseTemplate(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func (t *Template) MarshalYAML() (interface{}, error) {
	return t.authored(), nil
}

func (t *Template) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseTemplate(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.authored())
}
