// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package merge

import (
	"encoding/json"
	"sort"
)

// sourceMapV3 is the v3 Source Map JSON shape. The compiler records the
// contributing source files per emitted file; segment mappings are not
// tracked through the pipeline, so Mappings stays empty.
type sourceMapV3 struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// addSourceMap records one emitted file's map under "<file>.map".
func addSourceMap(maps map[string]string, file, content string, cssPieces, jsPieces []Piece) {
	seen := make(map[string]bool)
	var sources []string
	for _, pieces := range [][]Piece{cssPieces, jsPieces} {
		for _, p := range pieces {
			if p.File == "" || seen[p.File] {
				continue
			}
			seen[p.File] = true
			sources = append(sources, p.File)
		}
	}
	sort.Strings(sources)
	if sources == nil {
		sources = []string{}
	}

	data, err := json.Marshal(sourceMapV3{
		Version:  3,
		File:     file,
		Sources:  sources,
		Names:    []string{},
		Mappings: "",
	})
	if err != nil {
		return
	}
	maps[file+".map"] = string(data)
}
