package cliente

import "gorm.io/gorm"

type Repository interface {
	BuscarPorEmailOuCNPJ(db *gorm.DB, valor string) (*Cliente, error)
	Salvar(db *gorm.DB, c *Cliente) error
	BuscarPorID(db *gorm.DB, id uint) (*Cliente, error)
	ListarTodos(db *gorm.DB) ([]Cliente, error)
	ListarElegiveis(db *gorm.DB) ([]Cliente, error)
	Atualizar(db *gorm.DB, id uint, novosDados *Cliente) error
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Busca primeiro por e-mail, depois por CNPJ, para evitar ambiguidade
func (r *repositoryImpl) BuscarPorEmailOuCNPJ(db *gorm.DB, valor string) (*Cliente, error) {
	var c Cliente
	if err := db.Where("email = ?", valor).First(&c).Error; err == nil {
		return &c, nil
	}
	if err := db.Where("cnpj = ?", valor).First(&c).Error; err == nil {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Cliente) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Cliente, error) {
	var c Cliente
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Cliente, error) {
	var clientes []Cliente
	err := db.Find(&clientes).Error
	return clientes, err
}

// ListarElegiveis devolve os clientes que entram na geração mensal de
// faturas: plano ativo, valor mensal e dia de vencimento definidos.
func (r *repositoryImpl) ListarElegiveis(db *gorm.DB) ([]Cliente, error) {
	var clientes []Cliente
	err := db.
		Where("possui_plano = ?", true).
		Where("valor_mensal > 0").
		Where("dia_vencimento > 0").
		Find(&clientes).Error
	return clientes, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, novosDados *Cliente) error {
	var existente Cliente
	if err := db.First(&existente, id).Error; err != nil {
		return err
	}

	existente.Nome = novosDados.Nome
	existente.CNPJ = novosDados.CNPJ
	existente.Email = novosDados.Email
	existente.Telefone = novosDados.Telefone
	existente.PossuiPlano = novosDados.PossuiPlano
	existente.ValorMensal = novosDados.ValorMensal
	existente.DiaVencimento = novosDados.DiaVencimento

	return db.Save(&existente).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Cliente{}, id).Error
}
