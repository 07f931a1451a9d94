// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cjmod

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/chtljs"
)

// RegisterChtholly installs the Chtholly module's extension functions:
// printMylove renders an image into character blocks, iNeverAway builds
// a state-keyed function group behind a virtual object.
func RegisterChtholly(reg *Registry) error {
	printMylove, err := Create("printMylove {url: $!_, mode: $?_, width: $?_, height: $?_, scale: $?_}")
	if err != nil {
		return err
	}
	printMylove.Body = printMyloveBody
	reg.Register(printMylove)

	iNeverAway, err := Create("iNeverAway {entries: ...}")
	if err != nil {
		return err
	}
	iNeverAway.BindVirtualObject("iNeverAway")
	iNeverAway.LowerRaw = lowerINeverAway
	reg.Register(iNeverAway)
	return nil
}

// printMyloveBody draws the url image on a canvas and maps pixel
// brightness to characters: a dense ASCII ramp or unicode blocks.
const printMyloveBody = `const canvas = document.createElement('canvas');
const ctx = canvas.getContext('2d');
const img = new Image();
img.onload = function () {
	canvas.width = width || 80;
	canvas.height = height || 40;
	ctx.drawImage(img, 0, 0, canvas.width, canvas.height);
	const data = ctx.getImageData(0, 0, canvas.width, canvas.height).data;
	const chars = mode === 'ASCII' ? '@%#*+=-:. ' : '█▓▒░ ';
	let result = '';
	for (let i = 0; i < data.length; i += 4) {
		const brightness = (data[i] + data[i + 1] + data[i + 2]) / 3;
		result += chars[Math.floor((brightness / 255) * (chars.length - 1))];
		if ((i / 4 + 1) % canvas.width === 0) {
			result += '\n';
		}
	}
	console.log(result);
};
img.src = url;`

// lowerINeverAway lowers an iNeverAway block. Keys of the form
// "Name<State>" group into per-name state tables; the produced virtual
// object resolves both grouped and plain keys through a Proxy, yielding
// a no-op function for anything unknown.
func lowerINeverAway(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	trimmed = strings.TrimPrefix(trimmed, "{")
	trimmed = strings.TrimSuffix(trimmed, "}")
	entries, err := chtljs.SplitEntries(trimmed)
	if err != nil {
		return "", err
	}

	var params []string
	for _, e := range entries {
		params = append(params, fmt.Sprintf("'%s': %s", e.Key, e.Value))
	}
	return fmt.Sprintf(iNeverAwayTemplate, strings.Join(params, ", ")), nil
}

const iNeverAwayTemplate = `(function () {
const parameters = {%s};
const functionGroup = {};
for (const [key, value] of Object.entries(parameters)) {
	if (key.includes('<')) {
		const [funcName, state] = key.split('<');
		const cleanState = state.replace('>', '');
		if (!functionGroup[funcName]) {
			functionGroup[funcName] = {};
		}
		functionGroup[funcName][cleanState] = value;
	} else {
		functionGroup[key] = value;
	}
}
return new Proxy({}, {
	get(target, prop) {
		if (functionGroup[prop]) {
			if (typeof functionGroup[prop] === 'object') {
				return new Proxy({}, {
					get(target, state) {
						return functionGroup[prop][state] || function () {};
					}
				});
			}
			return functionGroup[prop];
		}
		return function () {};
	}
});
})()`
