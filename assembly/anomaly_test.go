// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package assembly

import (
	"testing"
)

func TestAnomaliesRecordedDuringParse(t *testing.T) {

	tests := []struct {
		in string
	}{
		{getAbsoluteFilePath("test/putty")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			file, err := New(tt.in, &Options{})
			if err != nil {
				t.Fatalf("New(%s) failed, reason: %v", tt.in, err)
			}
			err = file.Parse()
			if err != nil {
				t.Fatalf("Parse(%s) failed, reason: %v", tt.in, err)
			}

			for _, ano := range file.Anomalies {
				if ano != AnoPEHeaderOverlapDOSHeader &&
					ano != ErrInvalidFileAlignment &&
					ano != ErrInvalidSectionAlignment {
					t.Errorf("unexpected anomaly recorded: %s", ano)
				}
			}
		})
	}
}
