// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime knowledge base. It uses
the Go embed package to bake rules.yaml directly into the compiled binary,
so a deployment without an external knowledge-base file still ships the
curated expert rules.
*/

package seed

import (
	_ "embed"
)

// Rules holds the raw byte content of the embedded rules.yaml file.
//
// Pass these bytes directly to knowledge.Load. An external knowledge-base
// file, when configured, takes precedence over this seed.
//
//go:embed rules.yaml
var Rules []byte
