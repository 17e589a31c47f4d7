// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"encoding/json"
	"io"

	"github.com/sbinet/npyio"
	"gopkg.in/yaml.v3"
)

// Codec stores one step. Ext is the step file extension, including the dot.
type Codec[T any] interface {
	Ext() string
	Encode(w io.Writer, v T) error
	Decode(r io.Reader) (T, error)
}

// YAMLCodec stores steps as YAML documents. NaN and the infinities are
// written as .nan, .inf and -.inf and read back unchanged.
type YAMLCodec[T any] struct{}

func (YAMLCodec[T]) Ext() string { return ".yaml" }

func (YAMLCodec[T]) Encode(w io.Writer, v T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (YAMLCodec[T]) Decode(r io.Reader) (T, error) {
	var v T
	err := yaml.NewDecoder(r).Decode(&v)
	return v, err
}

// JSONCodec stores steps as JSON documents. It rejects NaN and infinite
// floats.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Ext() string { return ".json" }

func (JSONCodec[T]) Encode(w io.Writer, v T) error {
	return json.NewEncoder(w).Encode(v)
}

func (JSONCodec[T]) Decode(r io.Reader) (T, error) {
	var v T
	err := json.NewDecoder(r).Decode(&v)
	return v, err
}

// NpyCodec stores []float64 steps as numpy .npy arrays.
type NpyCodec struct{}

func (NpyCodec) Ext() string { return ".npy" }

func (NpyCodec) Encode(w io.Writer, v []float64) error {
	if v == nil {
		v = []float64{}
	}
	return npyio.Write(w, v)
}

func (NpyCodec) Decode(r io.Reader) ([]float64, error) {
	var v []float64
	if err := npyio.Read(r, &v); err != nil {
		return nil, err
	}
	return v, nil
}
