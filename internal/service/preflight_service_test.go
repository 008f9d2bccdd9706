package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

type fakeSTS struct {
	account string
	err     error
	calls   int
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

type fakeRoles map[string]bool

func (f fakeRoles) GetRole(_ context.Context, roleName string) (*iamtypes.Role, error) {
	if !f[roleName] {
		return nil, nil
	}
	return &iamtypes.Role{RoleName: aws.String(roleName)}, nil
}

type fakeObjects struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeObjects) ObjectExists(_ context.Context, _, _, _ string) (bool, error) {
	f.calls++
	return f.exists, f.err
}

const execRole = "arn:aws:iam::123456789012:role/service-role/exec"

func mustDesired(t *testing.T, in types.FunctionInput) types.DesiredState {
	t.Helper()
	d, err := types.NewDesiredState(in)
	assert.NilError(t, err)
	return d
}

func TestPreflightPasses(t *testing.T) {
	objects := &fakeObjects{exists: true}
	svc := &PreflightService{
		STS:     &fakeSTS{account: "123456789012"},
		IAM:     &IAMService{IAMRepo: fakeRoles{"exec": true}},
		Objects: objects,
	}
	desired := mustDesired(t, types.FunctionInput{
		Name: "f", Runtime: "python3.12", RoleARN: execRole, Handler: "app.handler",
		S3Bucket: "artifacts", S3Key: "f.zip",
	})

	assert.NilError(t, svc.Check(context.Background(), desired))
	assert.Equal(t, objects.calls, 1)
}

func TestPreflightFailures(t *testing.T) {
	tests := []struct {
		name    string
		svc     *PreflightService
		input   types.FunctionInput
		wantMsg string
	}{
		{
			name:    "account mismatch",
			svc:     &PreflightService{STS: &fakeSTS{account: "999999999999"}},
			input:   types.FunctionInput{Name: "f", Runtime: "python3.12", RoleARN: execRole},
			wantMsg: "credentials are for account 999999999999",
		},
		{
			name:    "sts failure",
			svc:     &PreflightService{STS: &fakeSTS{err: errors.New("expired token")}},
			input:   types.FunctionInput{Name: "f", Runtime: "python3.12", RoleARN: execRole},
			wantMsg: "expired token",
		},
		{
			name:    "missing role",
			svc:     &PreflightService{IAM: &IAMService{IAMRepo: fakeRoles{}}},
			input:   types.FunctionInput{Name: "f", Runtime: "python3.12", RoleARN: execRole},
			wantMsg: "role exec does not exist",
		},
		{
			name:    "invalid role arn",
			svc:     &PreflightService{IAM: &IAMService{IAMRepo: fakeRoles{}}},
			input:   types.FunctionInput{Name: "f", Runtime: "python3.12", RoleARN: "exec"},
			wantMsg: "not a valid ARN",
		},
		{
			name:    "missing object",
			svc:     &PreflightService{Objects: &fakeObjects{}},
			input:   types.FunctionInput{Name: "f", Runtime: "python3.12", S3Bucket: "artifacts", S3Key: "f.zip"},
			wantMsg: "s3://artifacts/f.zip does not exist",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.svc.Check(context.Background(), mustDesired(t, tc.input))
			assert.Check(t, faults.IsCategory(err, faults.ClientError))
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestPreflightSkipsAbsent(t *testing.T) {
	stsClient := &fakeSTS{account: "999999999999"}
	svc := &PreflightService{STS: stsClient, IAM: &IAMService{IAMRepo: fakeRoles{}}}

	err := svc.Check(context.Background(), mustDesired(t, types.FunctionInput{Name: "f", State: "absent", RoleARN: execRole}))
	assert.NilError(t, err)
	assert.Equal(t, stsClient.calls, 0)
}

func TestRoleNameFromARN(t *testing.T) {
	account, name, err := RoleNameFromARN(execRole)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(account, "123456789012"))
	assert.Check(t, is.Equal(name, "exec"))

	_, name, err = RoleNameFromARN("arn:aws:iam::123456789012:role/plain")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(name, "plain"))

	_, _, err = RoleNameFromARN("not-an-arn")
	assert.Check(t, err != nil)
}
