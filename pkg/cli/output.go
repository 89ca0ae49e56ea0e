package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"

	"github.com/gtdvccc/sslv2-go/pkg/assembler"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
)

func render(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

type accountView struct {
	Address  string `json:"address" yaml:"address"`
	Writable bool   `json:"writable,omitempty" yaml:"writable,omitempty"`
	Signer   bool   `json:"signer,omitempty" yaml:"signer,omitempty"`
}

type instructionView struct {
	Name     string        `json:"name" yaml:"name"`
	Program  string        `json:"program" yaml:"program"`
	Accounts []accountView `json:"accounts" yaml:"accounts"`
	Data     string        `json:"data" yaml:"data"` // base58
}

type planView struct {
	Operation string            `json:"operation" yaml:"operation"`
	Setup     []instructionView `json:"setup" yaml:"setup"`
	Core      []instructionView `json:"core" yaml:"core"`
	Teardown  []instructionView `json:"teardown" yaml:"teardown"`
	Simulated bool              `json:"simulated,omitempty" yaml:"simulated,omitempty"`
	Signature string            `json:"signature,omitempty" yaml:"signature,omitempty"`
}

var programNames = map[solana.PublicKey]string{
	solana.SystemProgramID:                    "system_transfer",
	solana.SPLAssociatedTokenAccountProgramID: "create_associated_token_account",
}

func instructionName(inst solana.Instruction) string {
	if sslInst, ok := inst.(*ssl.SSLInstruction); ok {
		return sslInst.Name
	}
	if name, ok := programNames[inst.ProgramID()]; ok {
		return name
	}
	if inst.ProgramID().Equals(solana.TokenProgramID) {
		data, err := inst.Data()
		if err == nil && len(data) > 0 {
			switch data[0] {
			case 9:
				return "close_account"
			case 17:
				return "sync_native"
			}
		}
		return "token"
	}
	return inst.ProgramID().String()
}

func viewInstructions(insts []solana.Instruction) ([]instructionView, error) {
	views := make([]instructionView, 0, len(insts))
	for _, inst := range insts {
		data, err := inst.Data()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", instructionName(inst), err)
		}
		metas := inst.Accounts()
		accounts := make([]accountView, len(metas))
		for i, meta := range metas {
			accounts[i] = accountView{Address: meta.PublicKey.String(), Writable: meta.IsWritable, Signer: meta.IsSigner}
		}
		views = append(views, instructionView{
			Name:     instructionName(inst),
			Program:  inst.ProgramID().String(),
			Accounts: accounts,
			Data:     base58.Encode(data),
		})
	}
	return views, nil
}

func viewPlan(plan *assembler.Plan) (*planView, error) {
	view := &planView{Operation: string(plan.Operation)}
	var err error
	if view.Setup, err = viewInstructions(plan.Setup); err != nil {
		return nil, err
	}
	if view.Core, err = viewInstructions(plan.Core); err != nil {
		return nil, err
	}
	if view.Teardown, err = viewInstructions(plan.Teardown); err != nil {
		return nil, err
	}
	return view, nil
}
