package receipts_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/layout"
	"github.com/lvillar/receipts/submission"
)

func ExampleGenerator_Generate() {
	gen, err := receipts.New()
	if err != nil {
		fmt.Println(err)
		return
	}

	req := &receipts.Request{
		Data: base64.StdEncoding.EncodeToString([]byte("<Skjema><Navn>Kari</Navn></Skjema>")),
		FormLayout: layout.NewFormLayout(layout.Element{
			ID:                "name",
			Type:              "Input",
			DataModelBindings: map[string]string{layout.BindingSimple: "Skjema.Navn"},
		}),
		Instance: &submission.Instance{
			ID:    "512345/c1572504-9fb2-45ff-9d26-1a3d9b9a6f1a",
			AppID: "ttd/app",
			Org:   "ttd",
		},
		Party: &submission.Party{PartyID: 512345, Name: "Kari Nordmann"},
	}

	var buf bytes.Buffer
	if err := gen.Generate(context.Background(), &buf, req); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	// Output:
	// true
}
