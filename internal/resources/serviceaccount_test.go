package resources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anneal-io/anneal/internal/platform/kube"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

type fakeServiceAccountAPI struct {
	getServiceAccount   func(ctx context.Context, namespace, name string) (*kube.ServiceAccount, error)
	applyServiceAccount func(ctx context.Context, sa kube.ServiceAccount) error
}

func (f *fakeServiceAccountAPI) GetServiceAccount(ctx context.Context, namespace, name string) (*kube.ServiceAccount, error) {
	if f.getServiceAccount == nil {
		return nil, errors.New("unexpected GetServiceAccount call")
	}
	return f.getServiceAccount(ctx, namespace, name)
}

func (f *fakeServiceAccountAPI) ApplyServiceAccount(ctx context.Context, sa kube.ServiceAccount) error {
	if f.applyServiceAccount == nil {
		return errors.New("unexpected ApplyServiceAccount call")
	}
	return f.applyServiceAccount(ctx, sa)
}

func bindingSpec(key, roleARN string) provision.ResourceSpec {
	return provision.ResourceSpec{
		Kind:       provision.KindServiceAccountBinding,
		Key:        key,
		Attributes: map[string]string{AttrRoleARN: roleARN},
	}
}

func TestServiceAccountBindingProbe(t *testing.T) {
	t.Parallel()

	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{
		getServiceAccount: func(_ context.Context, namespace, name string) (*kube.ServiceAccount, error) {
			assert.Equal(t, "kube-system", namespace)
			assert.Equal(t, "ingress-controller", name)
			return &kube.ServiceAccount{
				Namespace:   namespace,
				Name:        name,
				Annotations: map[string]string{"eks.amazonaws.com/role-arn": "arn:aws:iam::123456789012:role/ingress"},
			}, nil
		},
	})

	observed, err := handler.Probe(context.Background(), bindingSpec("kube-system/ingress-controller", "arn:aws:iam::123456789012:role/ingress"))
	require.NoError(t, err)
	assert.True(t, observed.Present)
	assert.Equal(t, "arn:aws:iam::123456789012:role/ingress", observed.Attributes[AttrRoleARN])
}

func TestServiceAccountBindingProbe_Absent(t *testing.T) {
	t.Parallel()

	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{
		getServiceAccount: func(context.Context, string, string) (*kube.ServiceAccount, error) {
			return nil, nil
		},
	})

	observed, err := handler.Probe(context.Background(), bindingSpec("kube-system/ingress-controller", "arn"))
	require.NoError(t, err)
	assert.False(t, observed.Present)
}

func TestServiceAccountBindingProbe_MalformedKey(t *testing.T) {
	t.Parallel()

	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{})

	_, err := handler.Probe(context.Background(), bindingSpec("no-namespace", "arn"))
	require.Error(t, err)
	assert.True(t, provision.IsConfiguration(err))
}

func TestServiceAccountBindingCreate_AppliesAnnotationAndLabels(t *testing.T) {
	t.Parallel()

	var got kube.ServiceAccount
	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{
		applyServiceAccount: func(_ context.Context, sa kube.ServiceAccount) error {
			got = sa
			return nil
		},
	})

	handle, err := handler.Create(context.Background(), bindingSpec("kube-system/ingress-controller", "arn:aws:iam::123456789012:role/ingress"))
	require.NoError(t, err)
	assert.Nil(t, handle)
	assert.Equal(t, "kube-system", got.Namespace)
	assert.Equal(t, "ingress-controller", got.Name)
	assert.Equal(t, "arn:aws:iam::123456789012:role/ingress", got.Annotations["eks.amazonaws.com/role-arn"])
	assert.Equal(t, ownership.Manager, got.Labels[ownership.LabelKey])
}

func TestServiceAccountBindingUpdate_SameApply(t *testing.T) {
	t.Parallel()

	var got kube.ServiceAccount
	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{
		applyServiceAccount: func(_ context.Context, sa kube.ServiceAccount) error {
			got = sa
			return nil
		},
	})
	assert.True(t, handler.Mutable())

	observed := provision.ObservedState{
		Present:    true,
		Attributes: map[string]string{AttrRoleARN: "arn:aws:iam::123456789012:role/old"},
	}
	handle, err := handler.Update(context.Background(), bindingSpec("kube-system/ingress-controller", "arn:aws:iam::123456789012:role/new"), observed)
	require.NoError(t, err)
	assert.Nil(t, handle)
	assert.Equal(t, "arn:aws:iam::123456789012:role/new", got.Annotations["eks.amazonaws.com/role-arn"])
}

func TestServiceAccountBindingApply_Error(t *testing.T) {
	t.Parallel()

	handler := NewServiceAccountBinding(&fakeServiceAccountAPI{
		applyServiceAccount: func(context.Context, kube.ServiceAccount) error {
			return errors.New("webhook denied the request")
		},
	})

	_, err := handler.Create(context.Background(), bindingSpec("kube-system/ingress-controller", "arn"))
	assert.ErrorContains(t, err, "webhook denied")
}
