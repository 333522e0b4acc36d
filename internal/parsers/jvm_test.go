package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecontext/codecontext/internal/model"
)

const javaSample = `
public class OrderService implements OrderApi {
    public OrderService() {
    }

    public Order processOrder(String id) {
        if (id == null) {
            throw new IllegalArgumentException();
        }
        return repository.find(id);
    }
}

interface OrderApi {
    Order processOrder(String id);
}
`

func TestJVMParser_ExtractsJavaClassAndMethods(t *testing.T) {
	t.Parallel()
	parser := NewJVMParser(model.LangJava)

	objects, err := parser.ExtractCodeObjects(context.Background(), "/repo/Order.java", "Order.java", []byte(javaSample))
	require.NoError(t, err)
	require.NotEmpty(t, objects)

	var class, iface model.CodeObject
	var methodCount int
	for _, obj := range objects {
		switch obj.ObjectType {
		case model.ObjectClass:
			class = obj
		case model.ObjectInterface:
			iface = obj
		case model.ObjectMethod, model.ObjectConstructor:
			methodCount++
		}
	}

	assert.Equal(t, "OrderService", class.QualifiedName)
	assert.Equal(t, "OrderApi", iface.QualifiedName)
	assert.GreaterOrEqual(t, methodCount, 2)
}

func TestJVMParser_KotlinReusesJavaGrammar(t *testing.T) {
	t.Parallel()
	parser := NewJVMParser(model.LangKotlin)
	assert.Equal(t, model.LangKotlin, parser.Language())

	objects, err := parser.ExtractCodeObjects(context.Background(), "/repo/Order.kt", "Order.kt", []byte(javaSample))
	require.NoError(t, err)
	for _, obj := range objects {
		assert.Equal(t, model.LangKotlin, obj.Language)
	}
}

func TestJVMParser_InheritanceEdgesResolveToImplementsKind(t *testing.T) {
	t.Parallel()
	parser := NewJVMParser(model.LangJava)

	objects, err := parser.ExtractCodeObjects(context.Background(), "/repo/Order.java", "Order.java", []byte(javaSample))
	require.NoError(t, err)

	rels, err := parser.ExtractRelationships(context.Background(), "Order.java", []byte(javaSample), objects)
	require.NoError(t, err)

	var sawImplements bool
	for _, r := range rels {
		if r.Kind == model.RelImplements {
			sawImplements = true
			assert.True(t, r.Resolved, "OrderApi is declared in the same file and should resolve")
		}
	}
	assert.True(t, sawImplements)
}
