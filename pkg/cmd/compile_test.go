// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInput(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

const okSrc = `from phd import bit, In, Out, Module

class Buf(Module):
    d = In(bit[8])
    q = Out(bit[8])
    q = d
`

func TestCompilePath_00(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "hdl")
	input := writeInput(t, dir, "buf.phd", okSrc)

	if code := compilePath(input, out, false); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	sv, err := os.ReadFile(filepath.Join(out, "Buf.sv"))
	if err != nil {
		t.Fatalf("missing emitted file: %v", err)
	}

	if !strings.Contains(string(sv), "module Buf (") {
		t.Errorf("unexpected output:\n%s", sv)
	}
}

func TestCompilePath_01(t *testing.T) {
	// one broken module fails the run but does not block its siblings.
	dir := t.TempDir()
	out := filepath.Join(dir, "hdl")
	writeInput(t, dir, "a.phd", okSrc)
	writeInput(t, dir, "b.phd", `class Broken(Module):
    clk = In(bit)
    x = bit[4]
    x = 1
    if clk.posedge:
        x = 2
`)

	if code := compilePath(dir, out, false); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	if _, err := os.Stat(filepath.Join(out, "Buf.sv")); err != nil {
		t.Errorf("sibling module should still emit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "Broken.sv")); err == nil {
		t.Error("broken module must not emit")
	}
}

func TestCompilePath_02(t *testing.T) {
	dir := t.TempDir()

	if code := compilePath(filepath.Join(dir, "nosuch.phd"), dir, false); code != 2 {
		t.Errorf("expected exit code 2 for a missing input, got %d", code)
	}

	if code := compilePath(dir, dir, false); code != 2 {
		t.Errorf("expected exit code 2 for a directory without .phd files, got %d", code)
	}
}

func TestCompilePath_03(t *testing.T) {
	// a parse failure is a compilation error (exit 1), not a usage error.
	dir := t.TempDir()
	out := filepath.Join(dir, "hdl")
	input := writeInput(t, dir, "bad.phd", "class Foo(Module):\n    x = = 1\n")

	if code := compilePath(input, out, false); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestDiscoverInputs_00(t *testing.T) {
	// only .phd files directly inside the directory, in sorted order.
	dir := t.TempDir()
	writeInput(t, dir, "b.phd", okSrc)
	writeInput(t, dir, "a.phd", okSrc)
	writeInput(t, dir, "notes.txt", "")

	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	writeInput(t, filepath.Join(dir, "sub"), "c.phd", okSrc)

	files, err := discoverInputs(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}

	if filepath.Base(files[0]) != "a.phd" || filepath.Base(files[1]) != "b.phd" {
		t.Errorf("expected sorted [a.phd b.phd], got %v", files)
	}
}
