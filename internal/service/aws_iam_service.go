package service

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// RoleGetter é o contrato de leitura de Roles (implementado por repository.IAMRepository).
type RoleGetter interface {
	GetRole(ctx context.Context, roleName string) (*iamtypes.Role, error)
}

// IAMService manipula a lógica de negócio de Roles.
type IAMService struct {
	IAMRepo RoleGetter
}

// CheckRoleExists é um método de leitura de estado exposto ao preflight.
func (s *IAMService) CheckRoleExists(ctx context.Context, roleName string) (bool, error) {
	role, err := s.IAMRepo.GetRole(ctx, roleName)
	if err != nil {
		return false, err
	}
	return role != nil, nil
}

// RoleNameFromARN extrai o nome da Role do ARN, descartando o path
// (arn:aws:iam::123456789012:role/service-role/exec -> exec).
func RoleNameFromARN(roleARN string) (accountID, roleName string, err error) {
	parsed, err := arn.Parse(roleARN)
	if err != nil {
		return "", "", err
	}
	resource := strings.TrimPrefix(parsed.Resource, "role/")
	if i := strings.LastIndex(resource, "/"); i >= 0 {
		resource = resource[i+1:]
	}
	return parsed.AccountID, resource, nil
}
