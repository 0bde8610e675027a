package extract

import (
	"testing"
)

func TestForFile_PicksByExtension(t *testing.T) {
	tests := []struct {
		path    string
		wantPDF bool
		wantErr bool
	}{
		{path: "doc.pdf", wantPDF: true},
		{path: "DOC.PDF", wantPDF: true},
		{path: "notes.txt"},
		{path: "report.docx"},
		{path: "image.png", wantErr: true},
		{path: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, err := ForFile(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			_, isPDF := e.(PDFExtractor)
			if isPDF != tt.wantPDF {
				t.Errorf("isPDF = %v, want %v", isPDF, tt.wantPDF)
			}
		})
	}
}
