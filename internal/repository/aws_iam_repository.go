package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

// RoleAPI é o subconjunto do *iam.Client usado pelo repositório.
type RoleAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

// IAMRepository encapsula as leituras IAM de baixo nível.
type IAMRepository struct {
	Client RoleAPI
}

func NewIAMRepository(c *client.AWSClient) *IAMRepository {
	return &IAMRepository{Client: c.IAM}
}

// GetRole busca uma Role IAM. Retorna nil, nil se não for encontrada.
func (r *IAMRepository) GetRole(ctx context.Context, roleName string) (*iamtypes.Role, error) {
	out, err := r.Client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		var nse *iamtypes.NoSuchEntityException
		if errors.As(err, &nse) || isAPIErrorCode(err, "NoSuchEntity") {
			return nil, nil
		}
		return nil, faults.NewTypedError(faults.ClientError, "GetRole failed", err)
	}
	return out.Role, nil
}
